package schema

import "financeflow/internal/models"

func str(maxLength int) map[string]any {
	return map[string]any{"type": "string", "maxLength": maxLength}
}

func timestamp() map[string]any {
	return map[string]any{"type": "string", "format": "date-time", "maxLength": 40}
}

func enum(values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values, "maxLength": 20}
}

func profileSchema() *Definition {
	return &Definition{
		Collection: models.CollectionProfiles,
		PrimaryKey: "id",
		Required:   []string{"id", "email"},
		Properties: map[string]any{
			"id":                 str(100),
			"email":              str(100),
			"avatar_url":         str(255),
			"preferred_currency": str(10),
			"language":           str(10),
			"updated_at":         timestamp(),
		},
	}
}

func walletSchema() *Definition {
	return &Definition{
		Collection: models.CollectionWallets,
		PrimaryKey: "id",
		Required:   []string{"id", "user_id", "name"},
		Indexes:    []string{"user_id"},
		Properties: map[string]any{
			"id":              str(100),
			"user_id":         str(100),
			"name":            str(100),
			"type":            str(50),
			"initial_balance": map[string]any{"type": "number"},
			"current_balance": map[string]any{"type": "number"},
			"updated_at":      timestamp(),
		},
	}
}

func categorySchema() *Definition {
	return &Definition{
		Collection: models.CollectionCategories,
		PrimaryKey: "id",
		Required:   []string{"id", "name", "type"},
		Indexes:    []string{"user_id"},
		Properties: map[string]any{
			"id":         str(100),
			"user_id":    map[string]any{"type": []string{"string", "null"}, "maxLength": 100},
			"name":       str(100),
			"icon":       str(50),
			"type":       enum(string(models.CategoryIncome), string(models.CategoryExpense)),
			"updated_at": timestamp(),
		},
	}
}

func transactionSchema() *Definition {
	return &Definition{
		Collection: models.CollectionTransactions,
		PrimaryKey: "id",
		Required: []string{
			"id", "user_id", "wallet_id", "category_id", "amount", "date", "updated_at", "sync_status",
		},
		Indexes: []string{"user_id", "date", "updated_at", "sync_status"},
		Properties: map[string]any{
			"id":              str(100),
			"user_id":         str(100),
			"wallet_id":       str(100),
			"category_id":     str(100),
			"amount":          map[string]any{"type": "number"},
			"type":            enum(string(models.CategoryIncome), string(models.CategoryExpense)),
			"date":            timestamp(),
			"note":            str(500),
			"attachment_url":  str(255),
			"local_file_path": str(255),
			"created_at":      timestamp(),
			"updated_at":      timestamp(),
			"is_deleted":      map[string]any{"type": "boolean"},
			"sync_status":     enum(string(models.SyncPending), string(models.SyncSynced)),
		},
	}
}
