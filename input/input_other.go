//go:build !linux

package input

func Open(_ string) (*Pen, error) {
	return nil, ErrNotSupported
}
