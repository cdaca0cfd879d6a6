// Package all registers every built-in storage backend. Import it for its
// side effects:
//
//	import _ "etl/internal/storage/all"
package all

import (
	_ "etl/internal/storage/postgres"
	_ "etl/internal/storage/sqlite"
)
