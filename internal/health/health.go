// Package health собирает эндпоинт проверки состояния сервиса.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New создаёт проверку состояния с проверкой соединения с базой данных.
func New(version string, db Pinger) (*health.Health, error) {
	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "tuning-shop",
			Version: version,
		}),
		health.WithChecks(health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check:     db.Ping,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create health checker: %w", err)
	}
	return h, nil
}
