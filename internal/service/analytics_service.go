package service

import (
	"context"
	"time"
)

type AnalyticsService struct {
	stores Stores
	now    func() time.Time
}

func NewAnalyticsService(stores Stores) *AnalyticsService {
	return &AnalyticsService{stores: stores, now: time.Now}
}

type FormStat struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	IsActive        bool   `json:"isActive"`
	SubmissionCount int    `json:"submissionCount"`
	ElementCount    int    `json:"elementCount"`
	CreatedAt       string `json:"createdAt"`
}

type Analytics struct {
	TotalForms       int        `json:"totalForms"`
	ActiveForms      int        `json:"activeForms"`
	TotalSubmissions int        `json:"totalSubmissions"`
	ThisMonth        int        `json:"thisMonth"`
	Forms            []FormStat `json:"forms"`
}

func (s *AnalyticsService) ForUser(ctx context.Context, userID string) (*Analytics, error) {
	forms, err := s.stores.Forms.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := formIDs(forms)
	counts, err := s.stores.Submissions.CountByFormIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	thisMonth, err := s.stores.Submissions.CountSince(ctx, ids, monthStart(s.now()))
	if err != nil {
		return nil, err
	}

	out := &Analytics{TotalForms: len(forms), ThisMonth: thisMonth, Forms: make([]FormStat, 0, len(forms))}
	for _, f := range forms {
		if f.IsActive {
			out.ActiveForms++
		}
		out.TotalSubmissions += counts[f.ID]
		out.Forms = append(out.Forms, FormStat{
			ID:              f.ID,
			Title:           f.Title,
			IsActive:        f.IsActive,
			SubmissionCount: counts[f.ID],
			ElementCount:    len(f.Elements),
			CreatedAt:       f.CreatedAt,
		})
	}
	return out, nil
}
