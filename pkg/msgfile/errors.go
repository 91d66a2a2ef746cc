package msgfile

import "errors"

var (
	ErrInvalidSignature = errors.New("invalid message file signature")
	ErrUnsupportedVer   = errors.New("unsupported message file version")
	ErrCorruptFile      = errors.New("corrupt message file")
	ErrIndexOverflow    = errors.New("message offset exceeds index width")
	ErrCountMismatch    = errors.New("message count does not match header")
	ErrMessageNotFound  = errors.New("message not found")
)
