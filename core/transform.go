package core

type Transform interface {
	NewTransform(config map[string]interface{}) error
	// Transform reports true when msg should be dropped from the stream.
	Transform(msg *Msg) (bool, error)
}
