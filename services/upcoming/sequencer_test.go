package upcoming

import (
	"context"
	"testing"
	"time"

	"releaseradar/models"
)

func waitResult(t *testing.T, seq *Sequencer) SequencedResult {
	t.Helper()
	select {
	case res := <-seq.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sequencer result")
		return SequencedResult{}
	}
}

func pageWithMarker(id int64) models.ListPage {
	return models.ListPage{Items: []models.CatalogItem{{ID: id, Category: models.CategoryMovies}}, LastPage: 1}
}

func TestSequencerSuppressesStaleResponse(t *testing.T) {
	// R1 is issued first but resolves after R2: the delivered state must
	// reflect R2 regardless of resolution order.
	r1Started := make(chan struct{})
	releaseR1 := make(chan struct{})

	fetch := func(_ context.Context, req ListRequest) models.ListPage {
		if req.Page == 1 {
			close(r1Started)
			<-releaseR1
			return pageWithMarker(1)
		}
		return pageWithMarker(2)
	}

	seq := NewSequencer(fetch, 0)
	defer seq.Close()

	seq.Submit(context.Background(), ListRequest{Category: models.CategoryMovies, Page: 1})
	<-r1Started
	seq.Submit(context.Background(), ListRequest{Category: models.CategoryMovies, Page: 2})

	res := waitResult(t, seq)
	close(releaseR1)

	if res.Request.Page != 2 || res.Page.Items[0].ID != 2 {
		t.Fatalf("delivered %+v, want R2's result", res)
	}

	// R1's late resolution must not surface afterwards.
	select {
	case late := <-seq.Results():
		t.Fatalf("stale result delivered: %+v", late)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSequencerDebouncesQueryChanges(t *testing.T) {
	var fetched []string
	done := make(chan struct{}, 4)

	fetch := func(_ context.Context, req ListRequest) models.ListPage {
		fetched = append(fetched, req.Query)
		done <- struct{}{}
		return pageWithMarker(int64(len(fetched)))
	}

	seq := NewSequencer(fetch, 80*time.Millisecond)
	defer seq.Close()

	// Rapid typing: only the last query survives the quiet period.
	seq.Submit(context.Background(), ListRequest{Category: models.CategoryAnime, Query: "f", Page: 1})
	seq.Submit(context.Background(), ListRequest{Category: models.CategoryAnime, Query: "fr", Page: 1})
	seq.Submit(context.Background(), ListRequest{Category: models.CategoryAnime, Query: "frieren", Page: 1})

	res := waitResult(t, seq)
	<-done

	if len(fetched) != 1 || fetched[0] != "frieren" {
		t.Fatalf("fetched = %v, want only the final query", fetched)
	}
	if res.Request.Query != "frieren" {
		t.Errorf("delivered query = %q", res.Request.Query)
	}
}

func TestSequencerDispatchesNonQueryChangesImmediately(t *testing.T) {
	fetch := func(_ context.Context, req ListRequest) models.ListPage {
		return pageWithMarker(int64(req.Page))
	}

	seq := NewSequencer(fetch, 500*time.Millisecond)
	defer seq.Close()

	start := time.Now()
	seq.Submit(context.Background(), ListRequest{Category: models.CategoryMovies, Page: 3})
	res := waitResult(t, seq)

	if elapsed := time.Since(start); elapsed > 250*time.Millisecond {
		t.Errorf("page change waited %v, want immediate dispatch", elapsed)
	}
	if res.Request.Page != 3 {
		t.Errorf("delivered page = %d", res.Request.Page)
	}
}

func TestSequencerCloseDropsPendingDebounce(t *testing.T) {
	fetch := func(_ context.Context, req ListRequest) models.ListPage {
		t.Error("fetch ran after Close")
		return models.ListPage{}
	}

	seq := NewSequencer(fetch, 50*time.Millisecond)
	seq.Submit(context.Background(), ListRequest{Category: models.CategoryAnime, Query: "x", Page: 1})
	seq.Close()

	time.Sleep(120 * time.Millisecond)
}
