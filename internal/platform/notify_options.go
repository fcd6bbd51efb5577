// Package platform sends desktop notifications through the native
// notification service of the host.
package platform

import "time"

// DefaultAppName identifies pixelpad to the notification service.
const DefaultAppName = "pixelpad"

// DefaultTimeout is how long a notification stays up when Options.Timeout
// is zero.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName overrides DefaultAppName.
	AppName string
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout is ignored where the platform decides on its own.
	Timeout time.Duration
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
