package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type fakeChannel struct {
	exchange string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.msg = msg
	return f.err
}

func TestPublishEvent_Body(t *testing.T) {
	ch := &fakeChannel{}
	pub := &GeofencePublisher{ch: ch}

	ts := time.UnixMilli(1715003456789)
	err := pub.PublishEvent(context.Background(), &domain.GeofenceEvent{
		UserID:     "user-1",
		RegionID:   "region-1",
		RegionName: "Home",
		Event:      domain.GeofenceEntered,
		Location:   domain.Coordinate{Lat: 19.076, Lon: 72.8777},
		Timestamp:  ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ch.exchange != ExchangeName {
		t.Errorf("expected exchange %s, got %s", ExchangeName, ch.exchange)
	}
	if ch.msg.ContentType != "application/json" {
		t.Errorf("expected application/json, got %s", ch.msg.ContentType)
	}

	var got eventMessage
	if err := json.Unmarshal(ch.msg.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Event != domain.GeofenceEntered {
		t.Errorf("expected geofence_entered, got %s", got.Event)
	}
	if got.RegionName != "Home" {
		t.Errorf("expected Home, got %s", got.RegionName)
	}
	if got.Location.Latitude != 19.076 {
		t.Errorf("expected 19.076, got %f", got.Location.Latitude)
	}
	if got.Timestamp != 1715003456789 {
		t.Errorf("expected 1715003456789, got %d", got.Timestamp)
	}
}

func TestPublishEvent_ChannelError(t *testing.T) {
	pub := &GeofencePublisher{ch: &fakeChannel{err: errors.New("channel closed")}}

	err := pub.PublishEvent(context.Background(), &domain.GeofenceEvent{
		UserID:    "user-1",
		Event:     domain.GeofenceExited,
		Timestamp: time.Unix(1715003456, 0),
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
