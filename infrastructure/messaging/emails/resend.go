package emails

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"

	"facemark.io/infrastructure/logger"
	"github.com/resend/resend-go/v2"
)

type ResendService struct {
	templatesOnce sync.Once
	templates     *template.Template
}

// SendEmail renders the named template and delivers it through resend.
// Failures are logged and swallowed; attendance and enrollment never block
// on mail delivery.
func (rs *ResendService) SendEmail(toEmail string, subject string, templateName string, opts interface{}) bool {
	html := rs.render(templateName, opts)
	if html == nil {
		return false
	}

	client := resend.NewClient(os.Getenv("RESEND_API_KEY"))
	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_DEFAULT_EMAIL"),
		To:      []string{toEmail},
		Subject: subject,
		Html:    *html,
	}

	if _, err := client.Emails.Send(params); err != nil {
		logger.Error("resend delivery failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "toEmail",
			Data: toEmail,
		}, logger.LoggerOptions{
			Key:  "templateName",
			Data: templateName,
		})
		return false
	}
	logger.Info(fmt.Sprintf("email sent to %s", toEmail), logger.LoggerOptions{
		Key:  "templateName",
		Data: templateName,
	})
	return true
}

func (rs *ResendService) render(templateName string, opts interface{}) *string {
	rs.templatesOnce.Do(func() {
		wd, _ := os.Getwd()
		pattern := filepath.Join(wd, "infrastructure", "messaging", "emails", "templates", "*.html")
		parsed, err := template.ParseGlob(pattern)
		if err != nil {
			logger.Error("failed to parse email templates", logger.LoggerOptions{
				Key:  "pattern",
				Data: pattern,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return
		}
		rs.templates = parsed
	})
	if rs.templates == nil {
		return nil
	}

	var buffer bytes.Buffer
	if err := rs.templates.ExecuteTemplate(&buffer, templateName+".html", opts); err != nil {
		logger.Error("failed to execute email template", logger.LoggerOptions{
			Key:  "templateName",
			Data: templateName,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil
	}
	rendered := buffer.String()
	return &rendered
}
