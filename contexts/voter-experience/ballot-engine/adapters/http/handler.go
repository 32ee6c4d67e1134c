package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/voter-experience/ballot-engine/application/commands"
	"agora/contexts/voter-experience/ballot-engine/application/queries"
	"agora/contexts/voter-experience/ballot-engine/domain/entities"
	"agora/contexts/voter-experience/ballot-engine/ports"
	httptransport "agora/contexts/voter-experience/ballot-engine/transport/http"
)

type Handler struct {
	Selections commands.SelectionUseCase
	CastFlow   commands.CastFlowUseCase
	Review     queries.ReviewUseCase
	Styles     ports.BallotStyleSource
	Logger     *slog.Logger
}

// LoadBallotHandler fetches the ballot style for the voter's area and builds
// fresh selection state for the session.
func (h Handler) LoadBallotHandler(ctx context.Context, req httptransport.LoadBallotRequest) (httptransport.LoadBallotResponse, error) {
	style, err := h.Styles.GetBallotStyle(ctx, req.TenantID, req.ElectionID, req.AreaID)
	if err != nil {
		return httptransport.LoadBallotResponse{}, err
	}
	if err := h.Selections.Reset(ctx, commands.ResetSelectionCommand{Style: style, Force: req.Force}); err != nil {
		return httptransport.LoadBallotResponse{}, err
	}
	contests := make([]httptransport.ContestSummary, 0, len(style.Contests))
	for _, contest := range style.Contests {
		contests = append(contests, httptransport.ContestSummary{
			ContestID:      contest.ID,
			Name:           contest.Name,
			MinVotes:       contest.MinVotes,
			MaxVotes:       contest.MaxVotes,
			CandidateCount: len(contest.Candidates),
		})
	}
	return httptransport.LoadBallotResponse{
		BallotStyleID:    style.ID,
		ElectionID:       style.ElectionID,
		Title:            style.Title,
		EncryptionPolicy: string(style.EncryptionPolicy),
		Demo:             style.PublicKey.IsDemo,
		Contests:         contests,
	}, nil
}

func (h Handler) SetChoiceHandler(
	ctx context.Context,
	electionID string,
	contestID string,
	req httptransport.SetChoiceRequest,
) (httptransport.SelectionResponse, error) {
	result, err := h.Selections.SetChoice(ctx, commands.SetChoiceCommand{
		ElectionID: electionID,
		ContestID:  contestID,
		Choice: entities.Choice{
			ID:          req.CandidateID,
			Selected:    req.Selected,
			WriteInText: req.WriteInText,
		},
	})
	if err != nil {
		return httptransport.SelectionResponse{}, err
	}
	return httptransport.SelectionResponse{State: result.State, Refused: result.Refused}, nil
}

func (h Handler) SetExplicitInvalidHandler(
	ctx context.Context,
	electionID string,
	contestID string,
	req httptransport.SetExplicitInvalidRequest,
) (httptransport.SelectionResponse, error) {
	result, err := h.Selections.SetExplicitInvalid(ctx, commands.SetExplicitInvalidCommand{
		ElectionID: electionID,
		ContestID:  contestID,
		Invalid:    req.Invalid,
	})
	if err != nil {
		return httptransport.SelectionResponse{}, err
	}
	return httptransport.SelectionResponse{State: result.State}, nil
}

func (h Handler) SetWriteInHandler(
	ctx context.Context,
	electionID string,
	contestID string,
	req httptransport.SetWriteInRequest,
) (httptransport.SelectionResponse, error) {
	result, err := h.Selections.SetWriteInText(ctx, commands.SetWriteInTextCommand{
		ElectionID:  electionID,
		ContestID:   contestID,
		CandidateID: req.CandidateID,
		Text:        req.Text,
	})
	if err != nil {
		return httptransport.SelectionResponse{}, err
	}
	return httptransport.SelectionResponse{State: result.State}, nil
}

func (h Handler) SetBlankHandler(ctx context.Context, electionID string, contestID string) (httptransport.SelectionResponse, error) {
	result, err := h.Selections.SetBlank(ctx, commands.SetBlankCommand{
		ElectionID: electionID,
		ContestID:  contestID,
	})
	if err != nil {
		return httptransport.SelectionResponse{}, err
	}
	return httptransport.SelectionResponse{State: result.State}, nil
}

func (h Handler) GetSelectionHandler(ctx context.Context, electionID string, contestID string) (httptransport.SelectionResponse, error) {
	state, err := h.Selections.Get(ctx, electionID, contestID)
	if err != nil {
		return httptransport.SelectionResponse{}, err
	}
	return httptransport.SelectionResponse{State: state}, nil
}

func (h Handler) ListSelectionsHandler(ctx context.Context, electionID string) (httptransport.SelectionListResponse, error) {
	states, err := h.Selections.GetAll(ctx, electionID)
	if err != nil {
		return httptransport.SelectionListResponse{}, err
	}
	return httptransport.SelectionListResponse{States: states}, nil
}

func (h Handler) ReviewHandler(ctx context.Context, electionID string, req httptransport.ReviewRequest) (httptransport.ReviewResponse, error) {
	result, err := h.CastFlow.BeginReview(ctx, electionID, req.Override)
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	response := httptransport.ReviewResponse{
		BallotID:        result.BallotID,
		DialogRequired:  result.DialogRequired,
		BlockedContests: result.BlockedContests,
	}
	if !result.DialogRequired {
		ballot := result.Ballot
		response.Ballot = &ballot
	}
	return response, nil
}

func (h Handler) BackToSelectionHandler(ctx context.Context, electionID string) error {
	return h.CastFlow.BackToSelecting(ctx, electionID)
}

func (h Handler) AuditHandler(ctx context.Context, electionID string) (httptransport.AuditResponse, error) {
	export, err := h.CastFlow.Audit(ctx, electionID)
	if err != nil {
		return httptransport.AuditResponse{}, err
	}
	return httptransport.AuditResponse{
		BallotID:  export.BallotID,
		Ballot:    export.Ballot,
		Content:   export.Signed.Content,
		Signature: export.Signed.Signature,
		PublicKey: export.Signed.PublicKey,
	}, nil
}

func (h Handler) CastHandler(ctx context.Context, electionID string) (httptransport.CastResponse, error) {
	result, err := h.CastFlow.Cast(ctx, electionID)
	if err != nil {
		return httptransport.CastResponse{}, err
	}
	return httptransport.CastResponse{
		CastVoteID: result.CastVote.ID,
		BallotID:   result.BallotID,
		Replayed:   result.Replayed,
		Demo:       result.CastVote.IsDemo,
	}, nil
}

func (h Handler) InterpretHandler(ctx context.Context, electionID string) (httptransport.InterpretResponse, error) {
	states, err := h.Review.InterpretBallot(ctx, electionID)
	if err != nil {
		return httptransport.InterpretResponse{}, err
	}
	return httptransport.InterpretResponse{States: states}, nil
}

func (h Handler) WriteInCapacityHandler(ctx context.Context, electionID string, contestID string) (httptransport.WriteInCapacityResponse, error) {
	available, err := h.Review.WriteInAvailableCharacters(ctx, electionID, contestID)
	if err != nil {
		return httptransport.WriteInCapacityResponse{}, err
	}
	return httptransport.WriteInCapacityResponse{ContestID: contestID, AvailableBytes: available}, nil
}

func (h Handler) BlankCheckHandler(ctx context.Context, electionID string, contestID string) (httptransport.BlankCheckResponse, error) {
	isBlank, err := h.Review.IsBlank(ctx, electionID, contestID)
	if err != nil {
		return httptransport.BlankCheckResponse{}, err
	}
	return httptransport.BlankCheckResponse{ContestID: contestID, IsBlank: isBlank}, nil
}
