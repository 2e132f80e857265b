package query

import (
	"context"
	"log/slog"
	"reflect"

	"financeflow/internal/models"
	"financeflow/internal/repository"
)

// Source is the slice of the store a query needs.
type Source interface {
	Find(ctx context.Context, c models.Collection, sel repository.Selector, sort ...repository.SortField) ([]repository.Document, error)
	Watch(ctx context.Context) <-chan repository.ChangeEvent
}

type Query struct {
	Collection models.Collection
	Selector   repository.Selector
	Sort       []repository.SortField
}

// Exec resolves once against the current persisted state.
func (q Query) Exec(ctx context.Context, src Source) ([]repository.Document, error) {
	return src.Find(ctx, q.Collection, q.Selector, q.Sort...)
}

// Relevant reports whether ev can change the result of q.
func (q Query) Relevant(ev repository.ChangeEvent) bool {
	if ev.Op == repository.ChangeExternal {
		return true
	}
	if ev.Collection != q.Collection {
		return false
	}
	return q.Selector.Matches(ev.Before) || q.Selector.Matches(ev.After)
}

type Result struct {
	Docs []repository.Document
	Err  error
}

// Subscribe emits the current result, then a new one after every relevant change that
// alters it. The channel closes when ctx ends or the store closes.
func (q Query) Subscribe(ctx context.Context, src Source, logger *slog.Logger) <-chan Result {
	out := make(chan Result, 1)
	events := src.Watch(ctx)

	go func() {
		defer close(out)

		var last []repository.Document
		emit := func(first bool) bool {
			docs, err := q.Exec(ctx, src)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				logger.Warn("Query refresh failed",
					slog.String("collection", string(q.Collection)),
					slog.Any("err", err),
				)
			} else if !first && reflect.DeepEqual(docs, last) {
				return true
			} else {
				last = docs
			}
			select {
			case out <- Result{Docs: docs, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(true) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if !q.Relevant(ev) {
					continue
				}
				// Coalesce whatever else is already queued into one refresh.
				for drained := false; !drained; {
					select {
					case _, ok := <-events:
						if !ok {
							return
						}
					default:
						drained = true
					}
				}
				if !emit(false) {
					return
				}
			}
		}
	}()
	return out
}

// Typed decodes a query's documents into records of type T.
type Typed[T any] struct {
	Query
}

func NewTyped[T any](q Query) Typed[T] {
	return Typed[T]{Query: q}
}

func (t Typed[T]) Exec(ctx context.Context, src Source) ([]T, error) {
	docs, err := t.Query.Exec(ctx, src)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

type TypedResult[T any] struct {
	Items []T
	Err   error
}

func (t Typed[T]) Subscribe(ctx context.Context, src Source, logger *slog.Logger) <-chan TypedResult[T] {
	out := make(chan TypedResult[T], 1)
	in := t.Query.Subscribe(ctx, src, logger)
	go func() {
		defer close(out)
		for r := range in {
			res := TypedResult[T]{Err: r.Err}
			if r.Err == nil {
				res.Items, res.Err = decodeAll[T](r.Docs)
			}
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func decodeAll[T any](docs []repository.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		rec, err := repository.Decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
