package bytecode

import "github.com/dekarrin/rezi"

// Encode produces the deterministic binary form of p. Two Programs built
// from identical source must produce byte-identical output; rezi's
// struct/slice/map encoding is order-preserving for slices and sorts map
// keys before encoding, which is what makes that guarantee hold here
// rather than something this package has to implement itself.
func Encode(p *Program) ([]byte, error) {
	return rezi.Enc(p)
}

// Decode reverses Encode.
func Decode(data []byte) (*Program, error) {
	p := &Program{}
	if _, err := rezi.Dec(data, p); err != nil {
		return nil, err
	}
	return p, nil
}
