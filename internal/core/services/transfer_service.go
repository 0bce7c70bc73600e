package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kamal-hamza/sx-cli/internal/core/domain"
	"github.com/kamal-hamza/sx-cli/internal/core/ports"
)

// TransferAction selects how the document leaves the application
type TransferAction string

const (
	ActionShare TransferAction = "share"
	ActionSave  TransferAction = "save"
)

// Title returns the chooser title shown for the action
func (a TransferAction) Title() string {
	if a == ActionSave {
		return "Download PDF"
	}
	return "Share PDF"
}

// TransferService hands the current document to the transfer collaborator
type TransferService struct {
	transferer ports.Transferer
	store      ports.ArtifactStore
	session    *Session
	logger     *slog.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(transferer ports.Transferer, store ports.ArtifactStore, session *Session) *TransferService {
	return &TransferService{
		transferer: transferer,
		store:      store,
		session:    session,
		logger:     slog.Default(),
	}
}

// WithLogger sets the service logger
func (s *TransferService) WithLogger(logger *slog.Logger) *TransferService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TransferRequest represents a request to share or save the document
type TransferRequest struct {
	Action TransferAction
}

// TransferResponse describes what was handed over
type TransferResponse struct {
	Action   TransferAction
	Artifact domain.ArtifactReference
}

// Share offers the document to other applications
func (s *TransferService) Share(ctx context.Context) (*TransferResponse, error) {
	return s.Execute(ctx, TransferRequest{Action: ActionShare})
}

// Save stores the document through the platform save facility
func (s *TransferService) Save(ctx context.Context) (*TransferResponse, error) {
	return s.Execute(ctx, TransferRequest{Action: ActionSave})
}

// Execute transfers the current document. Without one it returns
// domain.ErrNoArtifact. Collaborator failures are returned as a
// *domain.TransferError and never retried.
func (s *TransferService) Execute(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	ref, ok := s.session.Current()
	if !ok {
		return nil, domain.ErrNoArtifact
	}

	// The file may have been cleaned since it was built
	if _, err := s.store.Current(ctx); err != nil {
		if errors.Is(err, domain.ErrNoArtifact) {
			s.session.Clear()
		}
		return nil, err
	}

	action := req.Action
	if action == "" {
		action = ActionShare
	}

	err := s.transferer.Transfer(ctx, ports.TransferRequest{
		URI:           ref.URI(),
		MimeType:      domain.PDFMimeType,
		Title:         action.Title(),
		ShareWithApps: action == ActionShare,
	})
	if err != nil {
		s.logger.Warn("transfer failed", "action", action, "path", ref.Path, "error", err)
		return nil, &domain.TransferError{Action: string(action), Err: err}
	}

	s.logger.Info("transfer handed off", "action", action, "path", ref.Path)
	return &TransferResponse{Action: action, Artifact: ref}, nil
}
