// Package all imports all available adapters for side-effect registration.
//
// Import this package from your main to ensure all adapters are registered:
//
//	import _ "github.com/akazantsev/surebet/internal/providers/all"
package all

import (
	_ "github.com/akazantsev/surebet/internal/providers/feed"
	_ "github.com/akazantsev/surebet/internal/providers/static"
)
