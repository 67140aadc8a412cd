package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"floorplans/pkg/floorplan"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fetchFunc performs a single read of the configured range.
type fetchFunc func(ctx context.Context) (*sheets.ValueRange, error)

type SheetClient struct {
	fetch         fetchFunc
	spreadsheetID string
	readRange     string
	retry         RetryPolicy
	after         func(time.Duration) <-chan time.Time
}

func NewSheetClient(ctx context.Context, jsonPath, spreadsheetID, readRange string) (*SheetClient, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if jsonPath != "" {
		opts = append(opts, option.WithCredentialsFile(jsonPath))
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	fetch := func(ctx context.Context) (*sheets.ValueRange, error) {
		return srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).
			Do()
	}
	return &SheetClient{
		fetch:         fetch,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		retry:         DefaultRetryPolicy,
		after:         time.After,
	}, nil
}

func (s *SheetClient) Source() string {
	return fmt.Sprintf("sheet %s!%s", s.spreadsheetID, s.readRange)
}

// GetRows reads the configured range, backing off while rate limited.
// Cells are returned unformatted so numeric areas arrive as float64.
func (s *SheetClient) GetRows(ctx context.Context) ([][]interface{}, error) {
	var err error
	for attempt := 0; attempt < s.retry.MaxRetries; attempt++ {
		var resp *sheets.ValueRange
		resp, err = s.fetch(ctx)
		if err == nil {
			return resp.Values, nil
		}
		if !isRateLimited(err) {
			return nil, err
		}
		backoff := backoffFor(attempt, s.retry.MaxBackoff)
		log.WithField("backoff", backoff).Warn("Rate limited by Google Sheets API, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.after(backoff):
		}
	}
	return nil, fmt.Errorf("read %s after %d retries: %w", s.readRange, s.retry.MaxRetries, err)
}

// isRateLimited reports whether err is worth retrying. A 403 is only
// retried when the API says it is a quota error; otherwise the sheet is
// not shared with us and retrying cannot help.
func isRateLimited(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	switch gErr.Code {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		for _, item := range gErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

func backoffFor(attempt int, maxBackoff time.Duration) time.Duration {
	backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	return backoff
}

// LoadTable reads a floor-plan table from a sheet. Read failures are
// reported as *floorplan.LoadError like any other source.
func LoadTable(ctx context.Context, r ValueReader) (floorplan.Table, error) {
	values, err := r.GetRows(ctx)
	if err != nil {
		return floorplan.Table{}, &floorplan.LoadError{Source: r.Source(), Err: err}
	}
	return floorplan.LoadValues(r.Source(), values)
}
