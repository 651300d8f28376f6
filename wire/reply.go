package wire

import (
	"fmt"

	osc "github.com/hypebeast/go-osc/osc"
)

// Reply is a decoded datagram from the Engine. recognized prefixes per
// spec §4.8 include /done, /fail, /status.reply, /n_go, /n_end, /n_off,
// /n_on, /n_info, /b_info, /tr, /synced.
type Reply struct {
	Address   string
	Arguments []interface{}
}

// ParseReply decodes one raw reply datagram from the Engine into its
// address and argument list. Bundles are rejected: the Engine's reply
// channel only ever emits single messages for the command subset this
// package builds.
func ParseReply(data []byte) (Reply, error) {
	packet, err := osc.ParsePacket(string(data))
	if err != nil {
		return Reply{}, fmt.Errorf("wire: parsing reply datagram: %w", err)
	}
	msg, ok := packet.(*osc.Message)
	if !ok {
		return Reply{}, fmt.Errorf("wire: reply datagram was a bundle, not a message")
	}
	return Reply{Address: msg.Address, Arguments: msg.Arguments}, nil
}
