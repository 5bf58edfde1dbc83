//go:build tools

package georef

import (
	_ "github.com/dmarkham/enumer"
)
