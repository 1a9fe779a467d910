// Package directorytest provides an in-memory Directory.
package directorytest

import (
	"context"

	"taskhire/pkg/model"
)

type Static struct {
	UsersByID    map[string]model.UserSummary
	ServicesByID map[string]model.ServiceSummary
	Err          error
}

func (s *Static) Users(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]model.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.UsersByID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *Static) Services(ctx context.Context, ids []string) (map[string]model.ServiceSummary, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]model.ServiceSummary, len(ids))
	for _, id := range ids {
		if svc, ok := s.ServicesByID[id]; ok {
			out[id] = svc
		}
	}
	return out, nil
}
