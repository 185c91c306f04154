package events

import (
	"encoding/json"
	"fmt"
)

// Broadcaster fans a marshaled event out to every subscriber of a channel.
// Implemented by ConnectionManager.
type Broadcaster interface {
	Broadcast(channel string, event []byte)
}

// Publisher publishes typed analysis events for WebSocket delivery.
//
// Each public method accepts a specific typed payload struct — see
// payloads.go. Payloads are marshaled to JSON once and handed to the
// Broadcaster for the video's channel. Delivery is best effort: a slow or
// dead subscriber never fails the publish.
type Publisher struct {
	broadcaster Broadcaster
}

// NewPublisher creates a Publisher that delivers through the given Broadcaster.
func NewPublisher(b Broadcaster) *Publisher {
	return &Publisher{broadcaster: b}
}

// PublishAnalysisStarted broadcasts an analysis.started event.
func (p *Publisher) PublishAnalysisStarted(videoID string, payload AnalysisStartedPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal AnalysisStartedPayload: %w", err)
	}
	p.broadcaster.Broadcast(VideoChannel(videoID), payloadJSON)
	return nil
}

// PublishAnalysisProgress broadcasts an analysis.progress event.
// Called once per ingested page, so it must stay cheap.
func (p *Publisher) PublishAnalysisProgress(videoID string, payload AnalysisProgressPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal AnalysisProgressPayload: %w", err)
	}
	p.broadcaster.Broadcast(VideoChannel(videoID), payloadJSON)
	return nil
}

// PublishAnalysisCompleted broadcasts an analysis.completed event.
func (p *Publisher) PublishAnalysisCompleted(videoID string, payload AnalysisCompletedPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal AnalysisCompletedPayload: %w", err)
	}
	p.broadcaster.Broadcast(VideoChannel(videoID), payloadJSON)
	return nil
}

// PublishAnalysisFailed broadcasts an analysis.failed event.
func (p *Publisher) PublishAnalysisFailed(videoID string, payload AnalysisFailedPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal AnalysisFailedPayload: %w", err)
	}
	p.broadcaster.Broadcast(VideoChannel(videoID), payloadJSON)
	return nil
}
