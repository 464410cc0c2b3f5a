package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/config"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/constants"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
	"github.com/stayspot/mono-repo/backend/shared/go-utils"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MailSender and SMSSender are the outbound hooks; nil disables the channel.
type (
	MailSender func(msg *mail.SGMailV3) error
	SMSSender  func(params *twilioApi.CreateMessageParams) error
)

// AlertService pages the security contact when a settlement confirmation
// fails signature verification.
type AlertService struct {
	cfg      *config.Config
	sendMail MailSender
	sendSMS  SMSSender
}

func NewAlertService(cfg *config.Config) *AlertService {
	s := &AlertService{cfg: cfg}
	if cfg.SendgridAPIKey != "" && cfg.SecurityAlertEmail != "" {
		sg := sendgrid.NewSendClient(cfg.SendgridAPIKey)
		s.sendMail = func(msg *mail.SGMailV3) error {
			resp, err := sg.Send(msg)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 300 {
				return fmt.Errorf("sendgrid status %d", resp.StatusCode)
			}
			return nil
		}
	}
	if cfg.TwilioAccountSID != "" && cfg.SecurityAlertPhone != "" {
		tw := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		s.sendSMS = func(params *twilioApi.CreateMessageParams) error {
			_, err := tw.Api.CreateMessage(params)
			return err
		}
	}
	return s
}

// NewAlertServiceWithSenders is used by tests to capture outbound alerts.
func NewAlertServiceWithSenders(cfg *config.Config, sendMail MailSender, sendSMS SMSSender) *AlertService {
	return &AlertService{cfg: cfg, sendMail: sendMail, sendSMS: sendSMS}
}

// SignatureMismatch raises the alert. Delivery failures are logged only.
func (s *AlertService) SignatureMismatch(_ context.Context, method models.SettlementMethod, cause error) {
	subject := fmt.Sprintf(constants.EmailSubjectSignatureMismatch, method)
	body := fmt.Sprintf(
		"A %s settlement confirmation failed signature verification at %s.\n\nEnvironment: %s\nError: %v\n\nThe confirmation was rejected and no obligation was credited.",
		method, time.Now().UTC().Format(time.RFC1123Z), s.cfg.Env, cause,
	)

	utils.Logger.WithFields(logrus.Fields{
		"method": method,
		"env":    s.cfg.Env,
	}).WithError(cause).Error("Settlement signature mismatch")

	if s.sendMail != nil {
		fromEmail := s.cfg.LDFlag_SendgridFromEmail
		if fromEmail == "" {
			fromEmail = constants.DefaultSendgridFromEmail
		}
		from := mail.NewEmail(fmt.Sprintf("%s Bot", s.cfg.OrganizationName), fromEmail)
		to := mail.NewEmail(constants.SecurityTeamName, s.cfg.SecurityAlertEmail)
		msg := mail.NewSingleEmail(from, subject, to, body, "<pre>"+body+"</pre>")
		msg.TrackingSettings = &mail.TrackingSettings{
			ClickTracking: &mail.ClickTrackingSetting{Enable: utils.Ptr(false)},
		}
		if s.cfg.LDFlag_SendgridSandboxMode {
			ms := mail.NewMailSettings()
			ms.SetSandboxMode(mail.NewSetting(true))
			msg.MailSettings = ms
		}
		if err := s.sendMail(msg); err != nil {
			utils.Logger.WithError(err).Warn("Failed to email security alert")
		}
	}

	if s.sendSMS != nil {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(s.cfg.SecurityAlertPhone)
		params.SetFrom(s.cfg.TwilioFromPhone)
		params.SetBody(subject)
		if err := s.sendSMS(params); err != nil {
			utils.Logger.WithError(err).Warn("Failed to text security alert")
		}
	}
}
