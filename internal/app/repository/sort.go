package repository

import "strings"

// Allow-listed sort keys per listing. Keys map request values to the exact
// column expression used in ORDER BY; anything outside the map silently
// falls back to the default key. This mapping is load-bearing against SQL
// injection: user input selects an entry, it is never interpolated.

var PublicStoreSortColumns = map[string]string{
	"id":             "stores.id",
	"name":           "stores.name",
	"address":        "stores.address",
	"average_rating": "average_rating",
	"total_ratings":  "total_ratings",
}

var AdminStoreSortColumns = map[string]string{
	"id":             "stores.id",
	"name":           "stores.name",
	"address":        "stores.address",
	"average_rating": "average_rating",
	"total_ratings":  "total_ratings",
	"owner_name":     "owner_name",
}

var AdminUserSortColumns = map[string]string{
	"name":           "users.name",
	"email":          "users.email",
	"address":        "users.address",
	"role":           "users.role",
	"average_rating": "average_rating",
}

// ResolveSort normalizes a requested sort key and direction against an
// allow-list. Unknown keys fall back to defaultKey rather than failing;
// direction defaults to DESC. Returns the column expression plus the
// normalized key/direction echoed back to the client.
func ResolveSort(columns map[string]string, sortBy, sortOrder, defaultKey string) (column, key, order string) {
	key = defaultKey
	if _, ok := columns[sortBy]; ok {
		key = sortBy
	}
	column = columns[key]

	order = "DESC"
	if strings.EqualFold(sortOrder, "ASC") {
		order = "ASC"
	}
	return column, key, order
}
