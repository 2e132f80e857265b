package query

import (
	"financeflow/internal/models"
	"financeflow/internal/repository"
)

// Transactions lists the owner's live transactions, most recent first.
func Transactions(userID string) Typed[models.Transaction] {
	return NewTyped[models.Transaction](Query{
		Collection: models.CollectionTransactions,
		Selector: repository.Selector{
			repository.Eq("user_id", userID),
			repository.Ne("is_deleted", true),
		},
		Sort: []repository.SortField{{Field: "date", Desc: true}},
	})
}

func Wallets(userID string) Typed[models.Wallet] {
	return NewTyped[models.Wallet](Query{
		Collection: models.CollectionWallets,
		Selector:   repository.Selector{repository.Eq("user_id", userID)},
	})
}

// Categories includes the global defaults, whose user_id is null.
func Categories(userID string) Typed[models.Category] {
	return NewTyped[models.Category](Query{
		Collection: models.CollectionCategories,
		Selector:   repository.Selector{repository.In("user_id", userID, nil)},
	})
}

// PendingTransactions feeds the sync runner, oldest edit first. Tombstones are included.
func PendingTransactions() Typed[models.Transaction] {
	return NewTyped[models.Transaction](Query{
		Collection: models.CollectionTransactions,
		Selector:   repository.Selector{repository.Eq("sync_status", models.SyncPending)},
		Sort:       []repository.SortField{{Field: "updated_at"}},
	})
}

// WalletTransactions lists the live transactions booked against one wallet.
func WalletTransactions(walletID string) Typed[models.Transaction] {
	return NewTyped[models.Transaction](Query{
		Collection: models.CollectionTransactions,
		Selector: repository.Selector{
			repository.Eq("wallet_id", walletID),
			repository.Ne("is_deleted", true),
		},
	})
}
