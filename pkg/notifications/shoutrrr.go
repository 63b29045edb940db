package notifications

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/nicholas-fedor/cup/pkg/notifications/templates"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// router defines the interface for sending Shoutrrr notifications.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// shoutrrrNotifier renders reports and hands them to a background sender.
type shoutrrrNotifier struct {
	Urls      []string
	Router    router
	template  *template.Template
	messages  chan string
	done      chan bool
	params    *shoutrrrTypes.Params
	data      StaticData
	delay     time.Duration
	closeOnce sync.Once
}

var _ types.Notifier = &shoutrrrNotifier{}

// GetScheme extracts the scheme part of a Shoutrrr URL.
// It returns "invalid" if no scheme is found.
func GetScheme(url string) string {
	schemeEnd := strings.Index(url, ":")
	if schemeEnd <= 0 {
		return "invalid"
	}

	return url[:schemeEnd]
}

// GetNames returns the service names of the configured URLs.
func (n *shoutrrrNotifier) GetNames() []string {
	names := make([]string, len(n.Urls))
	for i, u := range n.Urls {
		names[i] = GetScheme(u)
	}

	return names
}

// newShoutrrrNotifier wires a router to a template and starts the sending goroutine.
func newShoutrrrNotifier(
	urls []string,
	r router,
	tpl *template.Template,
	data StaticData,
	delay time.Duration,
) *shoutrrrNotifier {
	params := &shoutrrrTypes.Params{}
	if data.Title != "" {
		params.SetTitle(data.Title)
	}

	n := &shoutrrrNotifier{
		Urls:     urls,
		Router:   r,
		template: tpl,
		messages: make(chan string, 1),
		done:     make(chan bool),
		params:   params,
		data:     data,
		delay:    delay,
	}

	go sendNotifications(n)

	return n
}

// sendNotifications processes queued messages and sends them via the router.
// It applies the configured delay before each send and logs failures per service.
func sendNotifications(notifier *shoutrrrNotifier) {
	for msg := range notifier.messages {
		time.Sleep(notifier.delay)

		errs := notifier.Router.Send(msg, notifier.params)

		for i, err := range errs {
			if err == nil {
				continue
			}

			scheme := "unknown"
			if i < len(notifier.Urls) {
				scheme = GetScheme(notifier.Urls[i])
			}

			logrus.WithFields(logrus.Fields{
				"service": scheme,
				"index":   i,
			}).WithError(err).Error("Failed to send shoutrrr notification")
		}
	}

	notifier.done <- true
}

// buildMessage renders the notification for a report.
func (n *shoutrrrNotifier) buildMessage(report types.Report) (string, error) {
	var body bytes.Buffer

	if err := n.template.Execute(&body, NewData(n.data, report)); err != nil {
		return "", fmt.Errorf("failed to execute notification template: %w", err)
	}

	return strings.TrimSpace(body.String()), nil
}

// Send renders the report and queues it for delivery.
// Empty messages are skipped.
func (n *shoutrrrNotifier) Send(report types.Report) {
	msg, err := n.buildMessage(report)
	if err != nil {
		logrus.WithError(err).Error("Notification template error")

		return
	}

	if msg == "" {
		logrus.Info("Skipping notification due to empty message")

		return
	}

	n.messages <- msg
}

// Close prevents further messages from being queued and waits until all queued messages are sent.
func (n *shoutrrrNotifier) Close() {
	n.closeOnce.Do(func() {
		close(n.messages)

		logrus.Debug("Waiting for the notification goroutine to finish")

		<-n.done
	})
}

// getShoutrrrTemplate resolves a template name or text.
// Built-in names map to commonTemplates; an empty string selects the default template.
func getShoutrrrTemplate(tplString string) (*template.Template, error) {
	tplBase := template.New("").Funcs(templates.Funcs)

	if builtin, found := commonTemplates[tplString]; found {
		logrus.WithField(`template`, tplString).Debug(`Using common template`)
		tplString = builtin
	}

	if tplString == "" {
		return template.Must(tplBase.Parse(commonTemplates[`default`])), nil
	}

	tpl, err := tplBase.Parse(tplString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notification template string: %w", err)
	}

	return tpl, nil
}

// sanitizeURLForLogging strips credentials, query and fragment from a service URL.
func sanitizeURLForLogging(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return GetScheme(rawURL) + "://<redacted>"
	}

	parsed.User = nil
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return parsed.String()
}
