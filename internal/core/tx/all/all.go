// Package all imports all operation sub-packages to trigger their init() registrations.
// Import this package in the main application to ensure all operation types are registered.
package all

import (
	_ "github.com/adipundir/donatrade/internal/core/tx/escrow"
	_ "github.com/adipundir/donatrade/internal/core/tx/grant"
	_ "github.com/adipundir/donatrade/internal/core/tx/market"
	_ "github.com/adipundir/donatrade/internal/core/tx/platform"
	_ "github.com/adipundir/donatrade/internal/core/tx/position"
	_ "github.com/adipundir/donatrade/internal/core/tx/vault"
)
