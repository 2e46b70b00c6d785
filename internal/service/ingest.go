package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"signaltracker/internal/config"
	"signaltracker/internal/extract"
	"signaltracker/internal/models"
	"signaltracker/internal/notify"
	"signaltracker/internal/repository"
)

var ErrEmptyText = errors.New("signal text is empty")

// IngestService turns raw signal text into stored signals.
type IngestService struct {
	Repo       repository.Repository
	Extractor  *extract.Extractor
	Notifier   notify.Notifier
	Logger     *zap.Logger
	Timeframes config.TimeframesConfig
}

func (s *IngestService) Ingest(ctx context.Context, source, text string) (*models.Signal, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = "api"
	}

	draft := extract.Draft{}
	if s.Extractor != nil {
		draft = s.Extractor.Extract(text)
	}

	now := time.Now().UTC()
	sig := &models.Signal{
		Source:    source,
		RawText:   text,
		Symbol:    draft.Symbol,
		Direction: draft.Direction,
		Entry:     draft.Entry,
		StopLoss:  draft.StopLoss,
		RiskLevel: models.RiskMedium,
		Timeframe: models.TimeframeMid,
		Status:    models.StatusPending,
		CreatedAt: now,
	}
	if draft.RiskLevel != nil {
		sig.RiskLevel = *draft.RiskLevel
	}
	if draft.Timeframe != nil {
		sig.Timeframe = *draft.Timeframe
	}
	sig.ExpiresAt = now.Add(s.Timeframes.Duration(sig.Timeframe))
	if err := sig.SetTargets(draft.Targets); err != nil {
		return nil, err
	}

	if err := s.Repo.InsertSignal(ctx, sig); err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		event := notify.CreationEvent{
			SignalID:  sig.ID,
			Source:    sig.Source,
			Symbol:    sig.Symbol,
			Direction: sig.Direction,
			CreatedAt: sig.CreatedAt,
			ExpiresAt: &sig.ExpiresAt,
		}
		if err := s.Notifier.SignalCreated(ctx, event); err != nil && s.Logger != nil {
			s.Logger.Warn("creation event delivery failed",
				zap.Uint64("signal_id", sig.ID), zap.Error(err))
		}
	}
	return sig, nil
}
