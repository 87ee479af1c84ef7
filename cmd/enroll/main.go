package main

import (
	"context"
	"log/slog"
	"os"

	"enroll/config"
	"enroll/internal/delivery"
	"enroll/internal/delivery/http"
	"enroll/internal/delivery/http/router/handler"
	"enroll/internal/domain/service"
	"enroll/internal/infra/auth"
	"enroll/internal/infra/identity"
	"enroll/internal/infra/identity/keycloak"
	logs "enroll/internal/infra/log"
	"enroll/internal/infra/metrics"
	"enroll/internal/infra/persistence/postgres"
	"enroll/internal/usecase/impl"

	deliverymiddleware "enroll/internal/delivery/http/middleware"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		metrics.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewProfileRepository,
			postgres.NewCountryRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			keycloak.NewClient,
			newIdentityProvider,
			newKeySource,
			auth.NewTokenVerifier,
		),
	)
}

// newIdentityProvider exposes the Keycloak client through the domain
// contract, wrapped with request metrics.
func newIdentityProvider(client *keycloak.Client, m *metrics.Metrics) service.IdentityProvider {
	return identity.WithMetrics(keycloak.AsIdentityProvider(client), m)
}

func newKeySource(client *keycloak.Client) auth.KeySource {
	return client
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewRegistrationService,
			impl.NewTokenService,
			impl.NewProfileService,
			impl.NewAccountService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			deliverymiddleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
