package notifications

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// errNoURLs indicates a notifier requested without any service URL.
var errNoURLs = errors.New("no notification urls configured")

// Options configures a notifier.
type Options struct {
	URLs []string
	// Template is a built-in template name or Go template text; empty selects "default".
	Template string
	// Hostname overrides the system hostname in titles and template data.
	Hostname string
	// Title replaces the generated title when set.
	Title string
	// TitleTag is prefixed to the generated title in brackets.
	TitleTag string
	// SkipTitle leaves the title empty.
	SkipTitle bool
	// Delay is waited before each delivery.
	Delay time.Duration
	// Stdout sends shoutrrr's own log output to stdout instead of the trace log.
	Stdout bool
}

// NewNotifier creates a notifier for the configured services.
//
// Parameters:
//   - opts: Notifier options.
//
// Returns:
//   - types.Notifier: The notifier; call Close to flush queued messages.
//   - error: Non-nil if no URL is given, the template does not parse or a URL is rejected by shoutrrr.
func NewNotifier(opts Options) (types.Notifier, error) {
	if len(opts.URLs) == 0 {
		return nil, errNoURLs
	}

	tpl, err := getShoutrrrTemplate(opts.Template)
	if err != nil {
		return nil, err
	}

	var logger shoutrrrTypes.StdLogger
	if opts.Stdout {
		logger = log.New(os.Stdout, ``, 0)
	} else {
		logger = log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)
	}

	r, err := shoutrrr.NewSender(logger, opts.URLs...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize shoutrrr notifications: %w", err)
	}

	data := GetTemplateData(opts)

	sanitized := make([]string, len(opts.URLs))
	for i, u := range opts.URLs {
		sanitized[i] = sanitizeURLForLogging(u)
	}

	logrus.WithFields(logrus.Fields{
		"urls":     sanitized,
		"template": opts.Template,
		"delay":    opts.Delay,
		"hostname": data.Host,
		"title":    data.Title,
	}).Debug("Creating notifier with configuration")

	return newShoutrrrNotifier(opts.URLs, r, tpl, data, opts.Delay), nil
}

// GetTitle formats the title based on the passed hostname and tag.
func GetTitle(hostname string, tag string) string {
	titleBuilder := strings.Builder{}
	if tag != "" {
		titleBuilder.WriteRune('[')
		titleBuilder.WriteString(tag)
		titleBuilder.WriteRune(']')
		titleBuilder.WriteRune(' ')
	}

	titleBuilder.WriteString("Cup updates")

	if hostname != "" {
		titleBuilder.WriteString(" on ")
		titleBuilder.WriteString(hostname)
	}

	return titleBuilder.String()
}

// GetTemplateData populates the static notification data from the options and the environment.
func GetTemplateData(opts Options) StaticData {
	hostname := opts.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	title := ""

	switch {
	case opts.SkipTitle:
	case opts.Title != "":
		title = opts.Title
	default:
		title = GetTitle(hostname, opts.TitleTag)
	}

	return StaticData{
		Host:  hostname,
		Title: title,
	}
}
