package controller

import "github.com/nx584/panelgw/internal/panel"

// Outbound message types. Values with their high bit unset never request an
// ack (ack framing only applies to inbound panel messages); these are sent
// as-is, with AckRequired left false on the command queue entry itself —
// the panel acks them on its own terms.
const (
	msgPositiveAck             = 0x1D
	msgNegativeAck             = 0x1E
	msgZoneNameRequest         = 0x23
	msgZoneStatusRequest       = 0x24
	msgPartitionStatusRequest  = 0x26
	msgSystemStatusRequest     = 0x28
	msgUserInfoRequestWithPin  = 0x32
	msgSetUserCode             = 0x34
	msgSetClock                = 0x3B
	msgPrimaryKeypadWithPin    = 0x3C
	msgSecondaryKeypadFunction = 0x3D
	msgPrimaryKeypadNoPin      = 0x3E
	msgZoneBypassToggle        = 0x3F
)

// cmd is a queued outbound command: a frame body not yet encoded/checksummed.
type cmd struct {
	msgType byte
	data    []byte
}

func cmdPositiveAck() cmd { return cmd{msgType: msgPositiveAck} }
func cmdNegativeAck() cmd { return cmd{msgType: msgNegativeAck} }

func cmdZoneNameRequest(zoneNumber int) cmd {
	return cmd{msgType: msgZoneNameRequest, data: []byte{byte(zoneNumber - 1)}}
}

func cmdZoneStatusRequest(zoneNumber int) cmd {
	return cmd{msgType: msgZoneStatusRequest, data: []byte{byte(zoneNumber - 1)}}
}

func cmdPartitionStatusRequest(partitionNumber int) cmd {
	return cmd{msgType: msgPartitionStatusRequest, data: []byte{byte(partitionNumber - 1)}}
}

func cmdSystemStatusRequest() cmd {
	return cmd{msgType: msgSystemStatusRequest}
}

func cmdUserInfoRequest(masterPin [6]int, userNumber int) cmd {
	pin := panel.PackPin(masterPin)
	return cmd{msgType: msgUserInfoRequestWithPin, data: []byte{pin[0], pin[1], pin[2], byte(userNumber)}}
}

func cmdSetUserCode(masterPin [6]int, userNumber int, userPin [6]int) cmd {
	mpin := panel.PackPin(masterPin)
	upin := panel.PackPin(userPin)
	return cmd{
		msgType: msgSetUserCode,
		data:    []byte{mpin[0], mpin[1], mpin[2], byte(userNumber), upin[0], upin[1], upin[2]},
	}
}

// clockDayOfWeek converts a Go weekday (Sunday=0) into the panel's 1..7
// Sunday-first encoding (Sunday=1 ... Saturday=7):
// ((weekday_monday0 + 1) % 7) + 1.
func clockDayOfWeek(goWeekday int) int {
	mondayZero := (goWeekday + 6) % 7
	return ((mondayZero+1)%7 + 1)
}

func cmdSetClock(year, month, day, hour, minute, goWeekday int) cmd {
	return cmd{
		msgType: msgSetClock,
		data: []byte{
			byte(year - 2000),
			byte(month),
			byte(day),
			byte(hour),
			byte(minute),
			byte(clockDayOfWeek(goWeekday)),
		},
	}
}

// padPin4 extends a 4-digit PIN to 6 digits by leaving the trailing pair
// unset (PackPin then emits 0xFF for that byte), per the documented disarm
// test vector (PIN "1234" packs to 0x21 0x43 0xFF, not 0x21 0x43 0x00).
func padPin4(d0, d1, d2, d3 int) [6]int {
	return [6]int{d0, d1, d2, d3, panel.PinUnset, panel.PinUnset}
}

func cmdDisarm(masterPin4 [4]int, partitionNumber int) cmd {
	pin := padPin4(masterPin4[0], masterPin4[1], masterPin4[2], masterPin4[3])
	packed := panel.PackPin(pin)
	return cmd{
		msgType: msgPrimaryKeypadWithPin,
		data:    []byte{packed[0], packed[1], packed[2], 0x01, byte(partitionNumber)},
	}
}

func cmdArmAuto() cmd {
	return cmd{msgType: msgSecondaryKeypadFunction, data: []byte{0x05, 0x01, 0x01}}
}

const (
	ArmStay = "stay"
	ArmExit = "exit"
	ArmAuto = "auto"
)

func cmdArm(kind string, partitionNumber int) (cmd, bool) {
	switch kind {
	case ArmStay:
		return cmd{msgType: msgPrimaryKeypadNoPin, data: []byte{0x00, byte(partitionNumber)}}, true
	case ArmExit:
		return cmd{msgType: msgPrimaryKeypadNoPin, data: []byte{0x02, byte(partitionNumber)}}, true
	case ArmAuto:
		return cmdArmAuto(), true
	default:
		return cmd{}, false
	}
}

func cmdZoneBypassToggle(zoneNumber int) cmd {
	return cmd{msgType: msgZoneBypassToggle, data: []byte{byte(zoneNumber - 1)}}
}
