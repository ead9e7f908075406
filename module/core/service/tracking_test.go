package service

import (
	"context"
	"errors"
	"testing"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type saverFunc func(ctx context.Context, s *domain.LocationSample) error

func (f saverFunc) SaveLocation(ctx context.Context, s *domain.LocationSample) error { return f(ctx, s) }

type monitorFunc func(ctx context.Context, s *domain.LocationSample) (*domain.Evaluation, error)

func (f monitorFunc) Monitor(ctx context.Context, s *domain.LocationSample) (*domain.Evaluation, error) {
	return f(ctx, s)
}

type sharesFunc func(ctx context.Context, userID string) ([]string, error)

func (f sharesFunc) ActiveShareIDs(ctx context.Context, userID string) ([]string, error) {
	return f(ctx, userID)
}

type recordingBroadcaster struct {
	shareIDs  []string
	payloads  []interface{}
	onPublish func()
}

func (b *recordingBroadcaster) Publish(shareID string, payload interface{}) {
	b.shareIDs = append(b.shareIDs, shareID)
	b.payloads = append(b.payloads, payload)
	if b.onPublish != nil {
		b.onPublish()
	}
}

func TestRecord_Pipeline(t *testing.T) {
	var steps []string
	saver := saverFunc(func(_ context.Context, _ *domain.LocationSample) error {
		steps = append(steps, "save")
		return nil
	})
	monitor := monitorFunc(func(_ context.Context, _ *domain.LocationSample) (*domain.Evaluation, error) {
		steps = append(steps, "monitor")
		return &domain.Evaluation{Membership: domain.Membership{"home": true}}, nil
	})
	shares := sharesFunc(func(_ context.Context, _ string) ([]string, error) {
		return []string{"share-1", "share-2"}, nil
	})
	b := &recordingBroadcaster{onPublish: func() { steps = append(steps, "broadcast") }}

	svc := NewTrackingService(saver, monitor, shares, b, discardLogger())
	eval, err := svc.Record(context.Background(), testSample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eval.Membership["home"] {
		t.Errorf("expected home membership, got %v", eval.Membership)
	}

	want := []string{"save", "broadcast", "broadcast", "monitor"}
	if len(steps) != len(want) {
		t.Fatalf("expected steps %v, got %v", want, steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("expected steps %v, got %v", want, steps)
		}
	}
	if len(b.shareIDs) != 2 || b.shareIDs[0] != "share-1" {
		t.Errorf("unexpected broadcast targets %v", b.shareIDs)
	}
	update, ok := b.payloads[0].(*LiveUpdate)
	if !ok {
		t.Fatalf("expected *LiveUpdate, got %T", b.payloads[0])
	}
	if update.Type != "location_update" || update.UserID != "user-1" || update.Timestamp != 1715003456000 {
		t.Errorf("unexpected update %+v", update)
	}
}

func TestRecord_SaveErrorStops(t *testing.T) {
	saver := saverFunc(func(_ context.Context, _ *domain.LocationSample) error {
		return errors.New("db error")
	})
	monitor := monitorFunc(func(_ context.Context, _ *domain.LocationSample) (*domain.Evaluation, error) {
		t.Fatal("Monitor should not be called when save fails")
		return nil, nil
	})
	shares := sharesFunc(func(_ context.Context, _ string) ([]string, error) {
		t.Fatal("shares should not be listed when save fails")
		return nil, nil
	})

	svc := NewTrackingService(saver, monitor, shares, &recordingBroadcaster{}, discardLogger())
	if _, err := svc.Record(context.Background(), testSample()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecord_ShareListErrorStillMonitors(t *testing.T) {
	monitored := false
	saver := saverFunc(func(_ context.Context, _ *domain.LocationSample) error { return nil })
	monitor := monitorFunc(func(_ context.Context, _ *domain.LocationSample) (*domain.Evaluation, error) {
		monitored = true
		return &domain.Evaluation{}, nil
	})
	shares := sharesFunc(func(_ context.Context, _ string) ([]string, error) {
		return nil, errors.New("db error")
	})
	b := &recordingBroadcaster{}

	svc := NewTrackingService(saver, monitor, shares, b, discardLogger())
	if _, err := svc.Record(context.Background(), testSample()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !monitored {
		t.Error("expected Monitor to run")
	}
	if len(b.shareIDs) != 0 {
		t.Errorf("expected no broadcasts, got %v", b.shareIDs)
	}
}

func TestRecord_MonitorError(t *testing.T) {
	saver := saverFunc(func(_ context.Context, _ *domain.LocationSample) error { return nil })
	monitor := monitorFunc(func(_ context.Context, _ *domain.LocationSample) (*domain.Evaluation, error) {
		return nil, errors.New("redis down")
	})
	shares := sharesFunc(func(_ context.Context, _ string) ([]string, error) { return nil, nil })

	svc := NewTrackingService(saver, monitor, shares, &recordingBroadcaster{}, discardLogger())
	if _, err := svc.Record(context.Background(), testSample()); err == nil {
		t.Fatal("expected error")
	}
}
