// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"propdesk_backend/internal/app"
	"propdesk_backend/internal/auth"
	"propdesk_backend/internal/company"
	"propdesk_backend/internal/config"
	"propdesk_backend/internal/identity"
	"propdesk_backend/internal/jobs"
	"propdesk_backend/internal/join"
	"propdesk_backend/internal/notification"
	"propdesk_backend/internal/platform/database"
	"propdesk_backend/internal/platform/elasticsearch"
	"propdesk_backend/internal/platform/events"
	"propdesk_backend/internal/platform/logger"
	"propdesk_backend/internal/profile"
	"propdesk_backend/internal/property"
	"propdesk_backend/internal/shared"
	"propdesk_backend/internal/staff"
	"propdesk_backend/internal/task"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		elasticsearch.NewClient,
		events.NewPublisher,
		provideCleanup,

		// Identity provider
		identity.NewFirebaseProvider,
		wire.Bind(new(identity.Provider), new(*identity.FirebaseProvider)),

		// Profiles
		profile.NewGORMRepository,
		profile.NewService,
		wire.Bind(new(profile.Service), new(*profile.ServiceImplementation)),
		wire.Bind(new(shared.ProfileResolver), new(*profile.ServiceImplementation)),

		// Auth workflow
		provideAuthSessionStore,
		auth.NewService,
		wire.Bind(new(auth.Service), new(*auth.ServiceImplementation)),
		auth.NewHandler,

		// Company and join side-channel
		company.NewGORMRepository,
		company.NewService,
		wire.Bind(new(company.Service), new(*company.ServiceImplementation)),
		company.NewHandler,
		provideJoinSessionStore,
		join.NewService,
		wire.Bind(new(join.Service), new(*join.ServiceImplementation)),
		join.NewHandler,

		// Staff management
		staff.NewService,
		wire.Bind(new(staff.Service), new(*staff.ServiceImplementation)),
		staff.NewHandler,

		// Properties
		property.NewGORMRepository,
		property.NewService,
		wire.Bind(new(property.Service), new(*property.ServiceImplementation)),
		property.NewHandler,

		// Tasks and notifications
		notification.NewGORMRepository,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewHandler,
		task.NewGORMRepository,
		task.NewService,
		wire.Bind(new(task.Service), new(*task.ServiceImplementation)),
		task.NewHandler,
		jobs.NewTaskOverdueJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
