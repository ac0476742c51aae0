// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns the SQL stores query.
package schema

import "strings"

// UserAccountTable represents a user account table.
type UserAccountTable struct {
	Table       string
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   string
}

// UserAccount is the schema definition for the PostgreSQL users.account table.
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	Email:       "email",
	Password:    "passwordhash",
	DisplayName: "displayname",
	CreatedAt:   "createdat",
}

// UserAccountLocal is the schema definition for the SQLite users_account table.
var UserAccountLocal = UserAccountTable{
	Table:       "users_account",
	ID:          "id",
	Email:       "email",
	Password:    "password_hash",
	DisplayName: "display_name",
	CreatedAt:   "created_at",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{t.ID, t.Email, t.Password, t.DisplayName, t.CreatedAt}
}

// ColumnList returns [UserAccountTable.Columns] joined for a SELECT clause.
func (t UserAccountTable) ColumnList() string {
	return strings.Join(t.Columns(), ", ")
}
