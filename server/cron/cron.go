package cron

import (
	"time"

	"github.com/go-co-op/gocron"
)

// NewCronScheduler builds a scheduler in the configured time zone, falling
// back to UTC when the zone can't be loaded.
func NewCronScheduler(timeZone string) *gocron.Scheduler {
	location, err := time.LoadLocation(timeZone)
	if err != nil {
		location = time.UTC
	}

	scheduler := gocron.NewScheduler(location)
	scheduler.TagsUnique()

	return scheduler
}
