// Package all wires the built-in storage backends into the storage factory.
//
// It exists purely for side effects: blank-importing it runs each backend's
// init, which registers its factory with the storage package. Importing this
// package makes the "sqlite" and "postgres" kinds available at runtime.
package all

import (
	_ "spacewalks/internal/storage/postgres"
	_ "spacewalks/internal/storage/sqlite"
)
