// Package notifications sends update summaries through shoutrrr services.
// A report is rendered with a Go template and queued to a background sender, so a slow service never
// stalls a refresh.
//
// Key components:
//   - Notifier: Renders reports and delivers them to every configured URL.
//   - StaticData: Title and host shared by every message.
//   - templates.Funcs: Helpers available in notification templates.
//
// Usage example:
//
//	notifier, err := notifications.NewNotifier(notifications.Options{URLs: []string{"logger://"}})
//	if err != nil {
//	    logrus.Fatal(err)
//	}
//	defer notifier.Close()
//	notifier.Send(report)
package notifications
