package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextChannel(t *testing.T) {
	tests := []struct {
		name     string
		process  ProcessName
		channel  Channel
		expected Channel
		ok       bool
	}{
		{
			name:     "deposit advances from payment to room",
			process:  ProcessDeposit,
			channel:  ChannelPayment,
			expected: ChannelRoom,
			ok:       true,
		},
		{
			name:     "deposit advances from room to notification",
			process:  ProcessDeposit,
			channel:  ChannelRoom,
			expected: ChannelNotification,
			ok:       true,
		},
		{
			name:    "deposit chain ends at notification",
			process: ProcessDeposit,
			channel: ChannelNotification,
			ok:      false,
		},
		{
			name:     "checkout advances from payment to notification",
			process:  ProcessCheckout,
			channel:  ChannelPayment,
			expected: ChannelNotification,
			ok:       true,
		},
		{
			name:     "checkin advances from room to notification",
			process:  ProcessCheckIn,
			channel:  ChannelRoom,
			expected: ChannelNotification,
			ok:       true,
		},
		{
			name:    "checkin has no payment link",
			process: ProcessCheckIn,
			channel: ChannelPayment,
			ok:      false,
		},
		{
			name:    "unknown process",
			process: ProcessName("laundry"),
			channel: ChannelPayment,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextChannel(tt.process, tt.channel)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestValidateChains(t *testing.T) {
	assert.NoError(t, ValidateChains())
}
