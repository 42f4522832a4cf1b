package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sanjigen3D/logisticaint-app-sub000/db"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
	"github.com/sanjigen3D/logisticaint-app-sub000/utils"
)

// VesselRegistry remembers the vessels that appear in search results so the
// most frequent ones can be followed on the AIS stream.
type VesselRegistry struct {
	db      db.Querier
	fetcher *utils.VesselFetcher
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewVesselRegistry(q db.Querier, fetcher *utils.VesselFetcher) *VesselRegistry {
	return &VesselRegistry{db: q, fetcher: fetcher, timeout: 2 * time.Minute}
}

// Record upserts the routes' vessels in the background. It outlives the
// caller's cancellation; use Wait to drain pending work.
func (r *VesselRegistry) Record(ctx context.Context, routes []models.UnifiedRoute) {
	imoSet := utils.CollectUniqueVessels(routes)
	if len(imoSet) == 0 {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.RecordSync(ctx, imoSet); err != nil {
			slog.Warn("recording vessels failed", "error", err)
		}
	}()
}

// RecordSync resolves MMSIs and upserts every vessel, returning the joined
// upsert errors.
func (r *VesselRegistry) RecordSync(ctx context.Context, imoSet map[string]db.Vessel) error {
	start := time.Now()
	vessels := imoSet
	if r.fetcher != nil {
		vessels = r.fetcher.FetchVesselData(ctx, imoSet)
	}

	var errs []error
	for _, v := range vessels {
		if err := db.UpsertVessel(ctx, r.db, v); err != nil {
			errs = append(errs, err)
		}
	}

	slog.Debug("vessels recorded", "count", len(vessels), "failed", len(errs), "dur", time.Since(start))
	return errors.Join(errs...)
}

// Wait blocks until background Record calls have finished.
func (r *VesselRegistry) Wait() {
	r.wg.Wait()
}
