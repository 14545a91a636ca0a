// Package all registers every supported ecosystem adapter.
//
// Import for side effects:
//
//	import _ "github.com/depfence/depfence/all"
package all

import (
	_ "github.com/depfence/depfence/internal/cargo"
	_ "github.com/depfence/depfence/internal/github"
	_ "github.com/depfence/depfence/internal/golang"
	_ "github.com/depfence/depfence/internal/npm"
	_ "github.com/depfence/depfence/internal/pypi"
)
