package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmeshcher/bookheaven/internal/repository"
	"github.com/mmeshcher/bookheaven/internal/service"
)

// openRepository выбирает хранилище по схеме DSN: postgres, mongodb или memory.
func openRepository(ctx context.Context, dsn string) (service.Repository, error) {
	if dsn == "" {
		return repository.NewMemoryRepository(), nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database uri: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		return repository.NewMemoryRepository(), nil
	case "postgres", "postgresql":
		return repository.NewPostgresRepository(ctx, dsn)
	case "mongodb", "mongodb+srv":
		return repository.NewMongoRepository(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
