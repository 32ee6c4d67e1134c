package ballotengine

import (
	"log/slog"

	cryptoadapter "agora/contexts/voter-experience/ballot-engine/adapters/crypto"
	httpadapter "agora/contexts/voter-experience/ballot-engine/adapters/http"
	"agora/contexts/voter-experience/ballot-engine/adapters/memory"
	"agora/contexts/voter-experience/ballot-engine/application/commands"
	"agora/contexts/voter-experience/ballot-engine/application/queries"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	"agora/contexts/voter-experience/ballot-engine/domain/services"
	"agora/contexts/voter-experience/ballot-engine/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Selections commands.SelectionUseCase
	CastFlow   commands.CastFlowUseCase
	Codec      commands.BallotCodecUseCase
	Review     queries.ReviewUseCase
	Store      *memory.Store
}

type Dependencies struct {
	Selections ports.SelectionRepository
	Sessions   ports.SessionRepository
	Styles     ports.BallotStyleSource
	StyleCache ports.StyleCache
	Status     ports.ElectionStatusSource
	Crypto     ports.CryptoProvider
	Gateway    ports.CastGateway
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Seed       ports.SeedSource
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	codecUseCase := commands.BallotCodecUseCase{
		Crypto: deps.Crypto,
		Logger: deps.Logger,
	}
	selectionUseCase := commands.SelectionUseCase{
		Selections: deps.Selections,
		Styles:     deps.StyleCache,
		Logger:     deps.Logger,
	}
	castFlowUseCase := commands.CastFlowUseCase{
		Selections: deps.Selections,
		Sessions:   deps.Sessions,
		Styles:     deps.StyleCache,
		Status:     deps.Status,
		Codec:      codecUseCase,
		Gateway:    deps.Gateway,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	reviewUseCase := queries.ReviewUseCase{
		Selections: deps.Selections,
		Sessions:   deps.Sessions,
		Styles:     deps.StyleCache,
		Codec:      codecUseCase,
		Orderer:    services.NewOrderer(deps.Seed.SessionSeed()),
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Selections: selectionUseCase,
			CastFlow:   castFlowUseCase,
			Review:     reviewUseCase,
			Styles:     deps.Styles,
			Logger:     deps.Logger,
		},
		Selections: selectionUseCase,
		CastFlow:   castFlowUseCase,
		Codec:      codecUseCase,
		Review:     reviewUseCase,
	}
}

func NewInMemoryModule(styles []entities.BallotStyle, logger *slog.Logger) Module {
	store := memory.NewStore(styles)
	module := NewModule(Dependencies{
		Selections: store,
		Sessions:   store,
		Styles:     store,
		StyleCache: store,
		Status:     store,
		Crypto:     cryptoadapter.NewProvider(),
		Gateway:    store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Seed:       store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
