package das

import (
	"fmt"
)

// Parameters is the set of parameters that must be configured for the DASer.
type Parameters struct {
	// SampleAmount is the amount of random cells sampled per block.
	SampleAmount int
	// AppID is the application whose rows are fully verified once a block is available.
	// Zero disables application data verification.
	AppID uint32
	// NotificationBufferSize is the capacity of the Notifications channel.
	NotificationBufferSize int
}

// Option is a function that configures DASer Parameters.
type Option func(*Parameters)

// DefaultParameters returns the default configuration values for the DASer.
func DefaultParameters() Parameters {
	return Parameters{
		SampleAmount:           8,
		AppID:                  0,
		NotificationBufferSize: 128,
	}
}

// Validate validates the values in Parameters.
func (p *Parameters) Validate() error {
	if p.SampleAmount <= 0 {
		return fmt.Errorf("das: invalid option: value SampleAmount %d must be positive", p.SampleAmount)
	}
	if p.NotificationBufferSize <= 0 {
		return fmt.Errorf(
			"das: invalid option: value NotificationBufferSize %d must be positive",
			p.NotificationBufferSize,
		)
	}
	return nil
}

// WithSampleAmount sets the amount of cells sampled per block.
func WithSampleAmount(amount int) Option {
	return func(p *Parameters) {
		p.SampleAmount = amount
	}
}

// WithAppID sets the application whose data is verified.
func WithAppID(id uint32) Option {
	return func(p *Parameters) {
		p.AppID = id
	}
}

// WithNotificationBufferSize sets the capacity of the Notifications channel.
func WithNotificationBufferSize(size int) Option {
	return func(p *Parameters) {
		p.NotificationBufferSize = size
	}
}
