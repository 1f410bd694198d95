package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"whoseonfirst/internal/domain/notification"
	"whoseonfirst/internal/domain/roster"
	"whoseonfirst/internal/domain/schedule"
	"whoseonfirst/internal/domain/transport"
	"whoseonfirst/internal/infra/config"
)

// AddressResult is the outcome of delivering one message to one address,
// after retries.
type AddressResult struct {
	Address    string
	Outcome    notification.Outcome
	Tries      int
	ProviderID string
	Err        error
}

// DeliveryReport summarizes one assignment dispatch across the
// recipient's addresses.
type DeliveryReport struct {
	AssignmentID int64
	Recipient    string
	Overridden   bool
	Results      []AddressResult
}

// Delivered reports whether at least one address accepted the message.
func (r DeliveryReport) Delivered() bool {
	for _, res := range r.Results {
		if res.Outcome == notification.OutcomeSent {
			return true
		}
	}
	return false
}

// BatchReport covers one daily dispatch run.
type BatchReport struct {
	Day     time.Time
	Reports []DeliveryReport
	Skipped int
	Failed  []error
}

type DispatchService struct {
	client      transport.Client
	attempts    notification.Repository
	assignments schedule.Repository
	members     roster.Repository
	resolver    *OverrideService
	logger      *logrus.Logger

	policy      RetryPolicy
	maxInFlight int
	escalation  []config.EscalationContact
}

func NewDispatchService(
	client transport.Client,
	attempts notification.Repository,
	assignments schedule.Repository,
	members roster.Repository,
	resolver *OverrideService,
	logger *logrus.Logger,
	policy RetryPolicy,
	maxInFlight int,
	escalation []config.EscalationContact,
) *DispatchService {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &DispatchService{
		client:      client,
		attempts:    attempts,
		assignments: assignments,
		members:     members,
		resolver:    resolver,
		logger:      logger,
		policy:      policy,
		maxInFlight: maxInFlight,
		escalation:  escalation,
	}
}

// Dispatch sends the shift-start alert for one assignment to whoever
// effectively covers it. Each of the recipient's addresses is delivered
// independently; a failure on one never blocks the others. Dispatch
// itself errors only when no delivery could even be attempted.
func (s *DispatchService) Dispatch(ctx context.Context, assignmentID int64, category notification.Category) (DeliveryReport, error) {
	resolution, err := s.resolver.EffectiveAssignee(ctx, assignmentID)
	if err != nil {
		return DeliveryReport{}, err
	}

	member, err := s.members.GetByID(ctx, resolution.MemberID)
	if err != nil {
		return DeliveryReport{}, fmt.Errorf("%w: member %d: %v", ErrRecipientUnresolved, resolution.MemberID, err)
	}
	addresses := member.Addresses()
	if len(addresses) == 0 {
		return DeliveryReport{}, fmt.Errorf("%w: %s", ErrRecipientUnresolved, member.Name)
	}

	assignment := resolution.Assignment
	body := ComposeShiftMessage(resolution.MemberName, assignment.DurationHours(), assignment.EndAt)

	report := DeliveryReport{
		AssignmentID: assignmentID,
		Recipient:    resolution.MemberName,
		Overridden:   resolution.Overridden,
		Results:      make([]AddressResult, len(addresses)),
	}

	var g errgroup.Group
	g.SetLimit(s.maxInFlight)
	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			report.Results[i] = s.deliver(ctx,
				sql.NullInt64{Int64: assignmentID, Valid: true},
				resolution.MemberName, address, body, category)
			return nil
		})
	}
	g.Wait()

	s.logger.WithFields(logrus.Fields{
		"assignment_id": assignmentID,
		"recipient":     resolution.MemberName,
		"overridden":    resolution.Overridden,
		"delivered":     report.Delivered(),
	}).Info("Assignment dispatched")
	return report, nil
}

// DispatchPending sends alerts for every shift starting on the given
// day that has not already been notified. Re-running the job is safe:
// assignments with a recorded successful send are skipped.
func (s *DispatchService) DispatchPending(ctx context.Context, day time.Time) (BatchReport, error) {
	assignments, err := s.assignments.ListStartingOn(ctx, day)
	if err != nil {
		return BatchReport{}, fmt.Errorf("could not load assignments for %s: %w", day.Format("2006-01-02"), err)
	}

	batch := BatchReport{Day: day}
	for _, a := range assignments {
		sent, err := s.attempts.HasSent(ctx, a.ID)
		if err != nil {
			return batch, fmt.Errorf("could not check send state of assignment %d: %w", a.ID, err)
		}
		if sent {
			batch.Skipped++
			continue
		}
		report, err := s.Dispatch(ctx, a.ID, notification.CategoryDaily)
		if err != nil {
			// One broken recipient must not starve the rest of the day.
			s.logger.WithField("assignment_id", a.ID).Errorf("Dispatch failed: %v", err)
			batch.Failed = append(batch.Failed, fmt.Errorf("assignment %d: %w", a.ID, err))
			continue
		}
		batch.Reports = append(batch.Reports, report)
	}
	return batch, nil
}

// DispatchWeeklyDigest sends the week's schedule summary to every
// escalation contact. Override substitutions are applied before
// rendering so contacts see who will actually answer.
func (s *DispatchService) DispatchWeeklyDigest(ctx context.Context, weekStart time.Time) ([]AddressResult, error) {
	assignments, err := s.assignments.ListByDateRange(ctx, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("could not load week of %s: %w", weekStart.Format("2006-01-02"), err)
	}

	entries := make([]DigestEntry, 0, len(assignments))
	for _, a := range assignments {
		resolution, err := s.resolver.EffectiveAssignee(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, DigestEntry{
			Name:    resolution.MemberName,
			StartAt: a.StartAt,
			EndAt:   a.EndAt,
		})
	}
	body := ComposeWeeklyDigest(weekStart, entries)

	results := make([]AddressResult, len(s.escalation))
	var g errgroup.Group
	g.SetLimit(s.maxInFlight)
	for i, contact := range s.escalation {
		i, contact := i, contact
		g.Go(func() error {
			results[i] = s.deliver(ctx, sql.NullInt64{}, contact.Name, contact.Phone, body, notification.CategoryWeeklyDigest)
			return nil
		})
	}
	g.Wait()

	s.logger.WithFields(logrus.Fields{
		"week_start": weekStart.Format("2006-01-02"),
		"contacts":   len(s.escalation),
	}).Info("Weekly digest dispatched")
	return results, nil
}

// deliver runs the bounded retry loop for one address and records one
// audit row per try. Retries stop early on non-retryable provider
// errors and on context cancellation.
func (s *DispatchService) deliver(ctx context.Context, assignmentID sql.NullInt64, recipient, address, body string, category notification.Category) AddressResult {
	result := AddressResult{Address: address}

	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if err := sleep(ctx, s.policy.Delay(attempt)); err != nil {
			result.Err = err
			return result
		}
		result.Tries = attempt

		providerID, sendErr := s.client.Send(ctx, address, body)

		attemptRow := &notification.Attempt{
			AssignmentID: assignmentID,
			Recipient:    recipient,
			Address:      address,
			Category:     category,
		}
		switch {
		case sendErr == nil:
			attemptRow.Outcome = notification.OutcomeSent
			attemptRow.ProviderID = sql.NullString{String: providerID, Valid: true}
		case ctx.Err() != nil:
			// The send raced shutdown; the provider may or may not have
			// accepted it.
			attemptRow.Outcome = notification.OutcomeUnknown
			attemptRow.ErrorDetail = sql.NullString{String: sendErr.Error(), Valid: true}
		default:
			attemptRow.Outcome = notification.OutcomeFailed
			attemptRow.ErrorDetail = sql.NullString{String: sendErr.Error(), Valid: true}
		}
		// The audit row must land even when the send context is gone.
		if err := s.attempts.Create(context.WithoutCancel(ctx), attemptRow); err != nil {
			s.logger.WithField("address", roster.MaskPhone(address)).Errorf("Could not record attempt: %v", err)
		}

		result.Outcome = attemptRow.Outcome
		result.Err = sendErr
		if sendErr == nil {
			result.ProviderID = providerID
			return result
		}
		if ctx.Err() != nil || !transport.IsRetryable(sendErr) {
			return result
		}
		s.logger.WithFields(logrus.Fields{
			"address": roster.MaskPhone(address),
			"attempt": attempt,
		}).Warnf("Send failed, will retry: %v", sendErr)
	}
	return result
}
