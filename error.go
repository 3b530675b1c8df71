package orakit

import (
	"errors"
	"fmt"
)

var EmptyConStrErr = errors.New("connection string can't be blank")
var CantCreateConnErr = func(error string) error {
	return fmt.Errorf("connection could not be created [%s]", error)
}
var CantPingConnection = func(error string) error { return fmt.Errorf("ping test failed [%s]", error) }
var DuplicateBindErr = func(name string) error {
	return fmt.Errorf("bind name [%s] used by more than one parameter", name)
}
var RefCursorNotFoundErr = errors.New("refCursor not found")
