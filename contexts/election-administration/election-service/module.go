package electionservice

import (
	"log/slog"

	httpadapter "agora/contexts/election-administration/election-service/adapters/http"
	"agora/contexts/election-administration/election-service/adapters/memory"
	"agora/contexts/election-administration/election-service/application/commands"
	"agora/contexts/election-administration/election-service/application/queries"
	"agora/contexts/election-administration/election-service/domain/entities"
	"agora/contexts/election-administration/election-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Events    ports.EventRepository
	Elections ports.ElectionRepository
	Styles    ports.BallotStyleRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createEvent := commands.CreateEventUseCase{
		Events:    deps.Events,
		Elections: deps.Elections,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	updateEvent := commands.UpdateEventUseCase{
		Events: deps.Events,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	changeVotingStatus := commands.ChangeVotingStatusUseCase{
		Events:    deps.Events,
		Elections: deps.Elections,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	publishBallotStyle := commands.PublishBallotStyleUseCase{
		Elections: deps.Elections,
		Styles:    deps.Styles,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}

	getEvent := queries.GetEventUseCase{
		Events: deps.Events,
		Logger: deps.Logger,
	}
	listEvents := queries.ListEventsUseCase{
		Events: deps.Events,
		Logger: deps.Logger,
	}
	listElections := queries.ListElectionsUseCase{
		Elections: deps.Elections,
		Logger:    deps.Logger,
	}
	getBallotStyle := queries.GetBallotStyleUseCase{
		Styles: deps.Styles,
		Logger: deps.Logger,
	}
	listBallotStyles := queries.ListBallotStylesUseCase{
		Styles: deps.Styles,
		Logger: deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateEvent:        createEvent,
			UpdateEvent:        updateEvent,
			ChangeVotingStatus: changeVotingStatus,
			PublishBallotStyle: publishBallotStyle,
			GetEvent:           getEvent,
			ListEvents:         listEvents,
			ListElections:      listElections,
			GetBallotStyle:     getBallotStyle,
			ListBallotStyles:   listBallotStyles,
			Logger:             deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.ElectionEvent, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Events:    store,
		Elections: store,
		Styles:    store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
