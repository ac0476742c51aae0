// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "database/sql"

// SQLiteDatabaseForTest exposes the handle behind a store.
func SQLiteDatabaseForTest(store *SQLiteUserStore) *sql.DB {
	return store.database
}
