package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-coach/clients"
	"github.com/maastricht-university/speech-coach/config"
	"github.com/maastricht-university/speech-coach/events"
	"github.com/maastricht-university/speech-coach/jobs"
	"github.com/maastricht-university/speech-coach/orchestrator"
	"github.com/maastricht-university/speech-coach/service"
	"github.com/maastricht-university/speech-coach/storage"
)

// app is a fully wired service plus whatever must be closed on exit.
type app struct {
	svc     *service.Service
	closers []io.Closer
	log     *logrus.Logger
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.WithError(err).Warn("close failed")
		}
	}
}

type models struct {
	transcriber orchestrator.Transcriber
	emotion     orchestrator.EmotionClassifier
	summarizer  orchestrator.Summarizer
	closers     []io.Closer
}

// buildModels picks a collaborator adapter per configured provider.
func buildModels(ctx context.Context, cfg *config.Root) (*models, error) {
	h := clients.NewHTTP(config.DurSeconds(cfg.Services.TimeoutSeconds))
	m := &models{}

	var oai *openai.Client
	if cfg.Providers.Transcription == "openai" || cfg.Providers.Summarizer == "openai" {
		oai = clients.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	}

	switch cfg.Providers.Transcription {
	case "openai":
		m.transcriber = clients.NewOpenAITranscriber(oai, cfg.OpenAI.TranscriptionModel)
	default:
		m.transcriber = clients.NewHTTPTranscriber(h, cfg.Services.ASR.URL)
	}

	m.emotion = clients.NewHTTPEmotion(h, cfg.Services.Emotion.URL)

	switch cfg.Providers.Summarizer {
	case "openai":
		m.summarizer = clients.NewOpenAISummarizer(oai, cfg.OpenAI.ChatModel)
	case "vertex":
		v, err := clients.NewVertexSummarizer(ctx, cfg.Vertex.Project, cfg.Vertex.Location, cfg.Vertex.Model)
		if err != nil {
			return nil, fmt.Errorf("vertex summarizer: %w", err)
		}
		m.summarizer = v
		m.closers = append(m.closers, v)
	default:
		m.summarizer = clients.NewHTTPSummarizer(h, cfg.Services.Summarizer.URL)
	}
	return m, nil
}

// build wires storage, registry, pipeline and service. Events are published
// only when withEvents is set and an AMQP URL is configured.
func build(ctx context.Context, cfg *config.Root, log *logrus.Logger, withEvents bool) (*app, error) {
	a := &app{log: log}

	store, err := storage.New(cfg.Paths.Outputs)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	m, err := buildModels(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, m.closers...)

	var pub events.Publisher = events.Nop{}
	if withEvents && cfg.Events.AMQPURL != "" {
		amqp, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Queue)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("events: %w", err)
		}
		pub = amqp
		a.closers = append(a.closers, amqp)
		log.WithField("queue", cfg.Events.Queue).Info("publishing job events")
	}

	reg := jobs.NewRegistry()
	p := orchestrator.New(orchestrator.Deps{
		Registry:    reg,
		Store:       store,
		Transcriber: m.transcriber,
		Emotion:     m.emotion,
		Summarizer:  m.summarizer,
		Publisher:   pub,
		Logger:      log,
	}, orchestrator.Options{
		VocabularyHint:    cfg.Analysis.VocabularyHint,
		Fillers:           cfg.Analysis.Fillers,
		SegmentWorkers:    cfg.Analysis.SegmentWorkers,
		MaxConcurrentJobs: cfg.Analysis.MaxConcurrentJobs,
	})
	a.svc = service.New(reg, store, p, log)

	log.WithFields(logrus.Fields{
		"transcription": cfg.Providers.Transcription,
		"emotion":       cfg.Providers.Emotion,
		"summarizer":    cfg.Providers.Summarizer,
		"outputs":       cfg.Paths.Outputs,
	}).Debug("pipeline wired")
	return a, nil
}
