package email

import (
	"encoding/base64"
	"sync"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

// Attachment is a binary file shipped with a message. Content holds the raw
// bytes; it is base64-encoded at the transport boundary.
type Attachment struct {
	Filename string
	Content  []byte
}

// SendResult is a soft outcome: delivery problems are reported, never thrown,
// so callers in unconfigured environments proceed unaffected.
type SendResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkSendResult reports per-recipient outcomes of a bulk send.
type BulkSendResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type BookingEmail struct {
	To            string
	Name          string
	WebinarTitle  string
	WebinarDate   string
	WebinarTime   string
	Host          string
	Amount        string
	TransactionID string
	Attachment    *Attachment
}

type PurchaseEmail struct {
	To                 string
	Name               string
	ServiceName        string
	ServiceDescription string
	Amount             string
	TransactionID      string
	Attachment         *Attachment
}

type MeetingLinkEmail struct {
	WebinarTitle string
	WebinarDate  string
	WebinarTime  string
	MeetingLink  string
}

type EmailService struct {
	client     *resend.Client
	from       string
	fromName   string
	configured bool
	logger     *zap.Logger
}

// NewEmailService builds the dispatcher. An empty API key leaves it in
// unconfigured mode: every send returns a soft "not configured" failure.
func NewEmailService(apiKey, fromAddress, fromName string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:     resend.NewClient(apiKey),
		from:       fromAddress,
		fromName:   fromName,
		configured: apiKey != "",
		logger:     logger,
	}
}

func (s *EmailService) SendBookingConfirmation(msg BookingEmail) SendResult {
	html, err := renderTemplate("booking_confirmation", struct {
		Heading string
		BookingEmail
	}{"Booking Confirmed", msg})
	if err != nil {
		s.logger.Error("render booking confirmation", zap.String("to", msg.To), zap.Error(err))
		return SendResult{Success: false, Error: err.Error()}
	}
	return s.send([]string{msg.To}, "Booking Confirmed: "+msg.WebinarTitle, html, msg.Attachment)
}

func (s *EmailService) SendPurchaseConfirmation(msg PurchaseEmail) SendResult {
	html, err := renderTemplate("purchase_confirmation", struct {
		Heading string
		PurchaseEmail
	}{"Purchase Confirmed", msg})
	if err != nil {
		s.logger.Error("render purchase confirmation", zap.String("to", msg.To), zap.Error(err))
		return SendResult{Success: false, Error: err.Error()}
	}
	return s.send([]string{msg.To}, "Purchase Confirmed: "+msg.ServiceName, html, msg.Attachment)
}

// SendMeetingLink delivers the same joining-link message to every recipient.
// Individual failures are counted, not propagated.
func (s *EmailService) SendMeetingLink(recipients []string, msg MeetingLinkEmail) BulkSendResult {
	html, err := renderTemplate("meeting_link", struct {
		Heading string
		MeetingLinkEmail
	}{"Your Webinar Is Starting Soon", msg})
	if err != nil {
		s.logger.Error("render meeting link email", zap.Error(err))
		return BulkSendResult{Failed: len(recipients)}
	}

	subject := "Join Link: " + msg.WebinarTitle

	var mu sync.Mutex
	var wg sync.WaitGroup
	result := BulkSendResult{}

	for _, to := range recipients {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			res := s.send([]string{to}, subject, html, nil)
			mu.Lock()
			defer mu.Unlock()
			if res.Success {
				result.Sent++
			} else {
				result.Failed++
			}
		}(to)
	}
	wg.Wait()

	s.logger.Info("bulk meeting link send finished",
		zap.String("webinar", msg.WebinarTitle),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))
	return result
}

func (s *EmailService) send(to []string, subject, html string, attachment *Attachment) SendResult {
	if !s.configured {
		s.logger.Warn("email transport not configured, skipping send",
			zap.Strings("to", to), zap.String("subject", subject))
		return SendResult{Success: false, Error: "not configured"}
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      to,
		Subject: subject,
		Html:    html,
	}
	if attachment != nil {
		params.Attachments = []resend.Attachment{resendAttachment(attachment)}
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Error("email send failed",
			zap.Strings("to", to), zap.String("subject", subject), zap.Error(err))
		return SendResult{Success: false, Error: err.Error()}
	}

	s.logger.Info("email sent",
		zap.Strings("to", to), zap.String("subject", subject), zap.String("id", resp.Id))
	return SendResult{Success: true}
}

// resendAttachment converts an attachment to the wire format. The API carries
// attachment content as base64 inside a JSON string; raw bytes would be
// mangled by UTF-8 sanitization during marshaling.
func resendAttachment(att *Attachment) resend.Attachment {
	return resend.Attachment{
		Filename: att.Filename,
		Content:  base64.StdEncoding.EncodeToString(att.Content),
	}
}
