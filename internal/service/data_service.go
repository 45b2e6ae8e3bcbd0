package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"go-community/pkg/apierror"
)

const (
	dayKeyLayout  = "20060102"
	maxStatsRange = 366
)

// DataService keeps site statistics in Redis: unique visitors per day as
// HyperLogLogs keyed by client IP, daily active users as bitmaps indexed by
// user id.
type DataService struct {
	client *redis.Client
	prefix string
}

func NewDataService(client *redis.Client) *DataService {
	return &DataService{client: client, prefix: "community:"}
}

func (s *DataService) uvKey(day time.Time) string {
	return s.prefix + "uv:" + day.Format(dayKeyLayout)
}

func (s *DataService) dauKey(day time.Time) string {
	return s.prefix + "dau:" + day.Format(dayKeyLayout)
}

func (s *DataService) RecordUV(ctx context.Context, ip string, day time.Time) error {
	if err := s.client.PFAdd(ctx, s.uvKey(day), ip).Err(); err != nil {
		return fmt.Errorf("record uv: %w", err)
	}
	return nil
}

func (s *DataService) RecordDAU(ctx context.Context, userID int, day time.Time) error {
	if userID < 0 {
		return apierror.BadRequest("user id must not be negative", strconv.Itoa(userID))
	}
	if err := s.client.SetBit(ctx, s.dauKey(day), int64(userID), 1).Err(); err != nil {
		return fmt.Errorf("record dau: %w", err)
	}
	return nil
}

// CalculateUV counts distinct visitors over the inclusive day range.
func (s *DataService) CalculateUV(ctx context.Context, start time.Time, end time.Time) (int64, error) {
	days, err := dayRange(start, end)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(days))
	for _, day := range days {
		keys = append(keys, s.uvKey(day))
	}

	union := s.prefix + "uv:" + start.Format(dayKeyLayout) + ":" + end.Format(dayKeyLayout)
	if err := s.client.PFMerge(ctx, union, keys...).Err(); err != nil {
		return 0, fmt.Errorf("merge uv: %w", err)
	}

	count, err := s.client.PFCount(ctx, union).Result()
	if err != nil {
		return 0, fmt.Errorf("count uv: %w", err)
	}
	return count, nil
}

// CalculateDAU counts users active on any day of the inclusive range.
func (s *DataService) CalculateDAU(ctx context.Context, start time.Time, end time.Time) (int64, error) {
	days, err := dayRange(start, end)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(days))
	for _, day := range days {
		keys = append(keys, s.dauKey(day))
	}

	union := s.prefix + "dau:" + start.Format(dayKeyLayout) + ":" + end.Format(dayKeyLayout)
	if err := s.client.BitOpOr(ctx, union, keys...).Err(); err != nil {
		return 0, fmt.Errorf("merge dau: %w", err)
	}

	count, err := s.client.BitCount(ctx, union, nil).Result()
	if err != nil {
		return 0, fmt.Errorf("count dau: %w", err)
	}
	return count, nil
}

func dayRange(start time.Time, end time.Time) ([]time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apierror.BadRequest("start and end dates are required", "")
	}
	if start.After(end) {
		return nil, apierror.BadRequest("start date is after end date", "")
	}

	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
		if len(days) > maxStatsRange {
			return nil, apierror.BadRequest("date range is too long", fmt.Sprintf("max %d days", maxStatsRange))
		}
	}
	return days, nil
}
