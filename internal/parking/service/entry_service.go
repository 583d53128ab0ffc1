package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Kinsa/parking-attendant/internal/parking/store"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
	"github.com/Kinsa/parking-attendant/internal/parking/vrm"
)

// EntryService records vehicle entries reported by gate cameras or
// attendants.
type EntryService struct {
	store    store.EntryStore
	validate *validator.Validate
	opts     Options
}

func NewEntryService(s store.EntryStore, opts Options) *EntryService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("vrm", func(fl validator.FieldLevel) bool {
		return vrm.ValidFormat(fl.Field().String())
	})
	return &EntryService{store: s, validate: v, opts: opts.withDefaults()}
}

// Record stores an entry. The identifier is stored normalized. An empty
// EnteredAt means now.
func (s *EntryService) Record(ctx context.Context, req types.EntryRequest) (types.EntryResponse, error) {
	req.VRM = strings.TrimSpace(req.VRM)
	if err := s.validate.Struct(req); err != nil {
		return types.EntryResponse{}, entryValidationError(err)
	}

	at := s.opts.Now().In(s.opts.Location)
	if req.EnteredAt != "" {
		t, err := ParseDateTime("entered_at", req.EnteredAt, s.opts.Location)
		if err != nil {
			return types.EntryResponse{}, err
		}
		at = t
	}

	rec, err := s.store.RecordEntry(ctx, vrm.Normalize(req.VRM), at)
	if err != nil {
		return types.EntryResponse{}, err
	}
	entriesRecorded.Inc()

	s.opts.Logger.InfoContext(ctx, "vehicle entry recorded",
		slog.Int64("entry_id", rec.ID),
		slog.String("vrm", rec.Identifier),
		slog.String("entered_at", rec.EnteredAt),
	)

	return types.EntryResponse{ID: rec.ID, VRM: rec.Identifier, EnteredAt: rec.EnteredAt}, nil
}

func entryValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	if verrs[0].Tag() == "required" {
		return missingIdentifier("vrm", msgMissingVRM)
	}
	return invalidIdentifier("vrm")
}
