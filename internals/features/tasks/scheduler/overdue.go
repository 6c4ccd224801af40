package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// OverdueMarker = bagian TaskService yang dipakai sweep.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// StartOverdueScheduler menjalankan sweep task overdue sesuai ekspresi cron
// (mis. "@every 1h"). Caller wajib Stop() saat shutdown.
func StartOverdueScheduler(marker OverdueMarker, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if _, err := c.AddFunc(spec, func() { RunOverdueSweep(marker) }); err != nil {
		return nil, err
	}
	log.Printf("[TASK-OVERDUE] started schedule=%q", spec)
	c.Start()
	return c, nil
}

func RunOverdueSweep(marker OverdueMarker) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := marker.MarkOverdue(ctx)
	if err != nil {
		log.Printf("[TASK-OVERDUE] error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[TASK-OVERDUE] %d task ditandai overdue", n)
	}
}
