package events

import (
	"context"
	"sync"
	"testing"

	"github.com/localnerve/agrilearn/internal/logger"
)

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()

	_ = r.Publish(ctx, New(EnrollmentCreated, nil))
	_ = r.Publish(ctx, New(CourseCompleted, map[string]interface{}{"courseId": "c1"}))

	got := r.Types()
	if len(got) != 2 || got[0] != EnrollmentCreated || got[1] != CourseCompleted {
		t.Fatalf("unexpected types %v", got)
	}
	if r.Events()[1].Data["courseId"] != "c1" {
		t.Errorf("data not kept: %v", r.Events()[1].Data)
	}
}

func TestRecorderConcurrentPublish(t *testing.T) {
	r := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Publish(context.Background(), New(PostCreated, nil))
		}()
	}
	wg.Wait()

	if n := len(r.Events()); n != 20 {
		t.Fatalf("expected 20 events, got %d", n)
	}
}

func TestLogPublisherNeverFails(t *testing.T) {
	p := NewLogPublisher(logger.Nop())
	if err := p.Publish(context.Background(), New(CertificateIssued, nil)); err != nil {
		t.Fatal(err)
	}
	if err := p.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRedisPublisherRequiresAddress(t *testing.T) {
	if _, err := NewRedisPublisher("  ", "", logger.Nop()); err == nil {
		t.Fatal("expected an error without an address")
	}
}
