package domain

import "github.com/pkg/errors"

// ProcessName identifies a business process coordinated as a saga
type ProcessName string

const (
	ProcessDeposit      ProcessName = "deposit"
	ProcessCheckout     ProcessName = "checkout"
	ProcessCheckIn      ProcessName = "checkin"
	ProcessCancellation ProcessName = "cancellation"
)

// SagaChains declares, per business process, the ordered channel sequence.
// It is configuration, not runtime state: steps consult it only to validate
// that a "trigger next" action references a legal next channel. The
// cancellation chain doubles as the compensation path, walked in reverse.
var SagaChains = map[ProcessName][]Channel{
	ProcessDeposit:      {ChannelPayment, ChannelRoom, ChannelNotification},
	ProcessCheckout:     {ChannelPayment, ChannelNotification},
	ProcessCheckIn:      {ChannelRoom, ChannelNotification},
	ProcessCancellation: {ChannelPayment, ChannelRoom, ChannelNotification},
}

// NextChannel returns the channel that follows the given one in the
// process chain, or false when the chain is exhausted or the channel is
// not part of the process.
func NextChannel(process ProcessName, channel Channel) (Channel, bool) {
	chain, ok := SagaChains[process]
	if !ok {
		return "", false
	}
	for i, c := range chain {
		if c == channel {
			if i+1 < len(chain) {
				return chain[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// ValidateChains checks the chain table at startup: every process has at
// least one channel, every channel is known, and no channel repeats within
// a process.
func ValidateChains() error {
	known := make(map[Channel]bool, len(AllChannels))
	for _, c := range AllChannels {
		known[c] = true
	}

	for process, chain := range SagaChains {
		if len(chain) == 0 {
			return errors.Errorf("saga chain %q is empty", process)
		}

		seen := make(map[Channel]bool, len(chain))
		for _, channel := range chain {
			if !known[channel] {
				return errors.Errorf("saga chain %q references unknown channel %q", process, channel)
			}
			if seen[channel] {
				return errors.Errorf("saga chain %q repeats channel %q", process, channel)
			}
			seen[channel] = true
		}
	}

	return nil
}
