package sentinel

var _ error = Error("")

// Error is an error value that can live in a const block. Two Error values are
// equal when their text is equal, so errors.Is matches them through %w chains
// without any custom Is method.
type Error string

func (e Error) Error() string {
	return string(e)
}
