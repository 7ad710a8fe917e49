package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"travelink/internal/request"
	"travelink/internal/user"
	"travelink/internal/workflow"
	"travelink/pkg/sms"
)

// Dispatcher turns stage changes into notifications: an in-app record
// always, a text message when the recipient has a phone number. It runs
// after the stage transaction commits; a failed send never rolls back an
// approval, it just leaves the notification row in failed state.
type Dispatcher struct {
	Log   *zap.Logger
	Repo  *Repository
	Users *user.Repository
	SMS   sms.Client
}

func (d *Dispatcher) StageChanged(ctx context.Context, req *request.Request, previous workflow.Stage, suggestion *workflow.Suggestion, approver *workflow.Candidate) {
	// The requester hears about every transition of their own request.
	if body := requesterMessage(req, previous); body != "" {
		d.deliver(ctx, req, req.RequesterID, body)
	}

	// The suggested next approver gets a nudge when one resolves.
	if approver != nil && suggestion != nil && req.Stage.IsPending() {
		body := fmt.Sprintf("Travel request %s is waiting for you: %s.", req.RequestNumber, suggestion.Reason)
		d.deliver(ctx, req, approver.ID, body)
	}
}

func requesterMessage(req *request.Request, previous workflow.Stage) string {
	switch req.Stage {
	case workflow.StageApproved:
		return fmt.Sprintf("Travel request %s is fully approved.", req.RequestNumber)
	case workflow.StageRejected:
		return fmt.Sprintf("Travel request %s was rejected at %s: %s", req.RequestNumber, workflow.Stage(req.RejectionStage).Label(), req.RejectionReason)
	case workflow.StageCancelled:
		return fmt.Sprintf("Travel request %s was cancelled.", req.RequestNumber)
	case workflow.StageDraft:
		return fmt.Sprintf("Travel request %s was returned to you for changes.", req.RequestNumber)
	default:
		if previous == workflow.StageDraft {
			// Submission confirmation.
			return fmt.Sprintf("Travel request %s submitted; now at %s.", req.RequestNumber, req.Stage.Label())
		}
		return fmt.Sprintf("Travel request %s moved to %s.", req.RequestNumber, req.Stage.Label())
	}
}

func (d *Dispatcher) deliver(ctx context.Context, req *request.Request, recipientID, body string) {
	n := &Notification{
		RequestID:   req.ID,
		RecipientID: recipientID,
		Channel:     "in_app",
		Body:        body,
		Status:      "queued",
	}
	if err := d.Repo.Insert(ctx, n); err != nil {
		d.Log.Warn("insert notification", zap.Error(err), zap.String("request", req.ID))
		return
	}

	recipient, err := d.Users.GetByID(ctx, recipientID)
	if err != nil || recipient.Phone == "" {
		return
	}

	s := &Notification{
		RequestID:   req.ID,
		RecipientID: recipientID,
		Channel:     "sms",
		Body:        body,
		Status:      "queued",
	}
	msgID, sendErr := d.SMS.Send(ctx, recipient.Phone, body)
	if sendErr != nil {
		s.Status = "failed"
		d.Log.Warn("send sms", zap.Error(sendErr), zap.String("request", req.ID))
	} else {
		s.Status = "sent"
		s.SMSMessageID = msgID
	}
	if err := d.Repo.Insert(ctx, s); err != nil {
		d.Log.Warn("insert sms notification", zap.Error(err), zap.String("request", req.ID))
	}
}
