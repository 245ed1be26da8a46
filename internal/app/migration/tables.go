package migration

// Table описывает копируемую таблицу. Колонки совпадают в MySQL и PostgreSQL.
type Table struct {
	Name    string
	Columns []string
	OrderBy string
	// BoolColumns приходят из MySQL как tinyint(1)
	BoolColumns []string
	// HasSerialID - после копирования нужно сдвинуть последовательность id
	HasSerialID bool
}

// Stage - таблицы без взаимных ссылок, копируются параллельно.
type Stage []Table

func refTable(name string) Table {
	return Table{Name: name, Columns: []string{"id", "name", "slug"}, OrderBy: "id", HasSerialID: true}
}

func joinTable(name, left, right string) Table {
	return Table{Name: name, Columns: []string{left, right}, OrderBy: left + ", " + right}
}

// Plan - таблицы в порядке внешних ключей.
var Plan = []Stage{
	{
		{Name: "users", Columns: []string{"id", "email", "full_name", "password", "role", "created_at", "updated_at"}, OrderBy: "id", HasSerialID: true},
		{Name: "holdings", Columns: []string{"id", "name", "slug", "created_at", "updated_at"}, OrderBy: "id", HasSerialID: true},
		{Name: "cities", Columns: []string{"id", "name", "slug", "region", "created_at", "updated_at"}, OrderBy: "id", HasSerialID: true},
		refTable("cms"),
		refTable("control_panels"),
		refTable("countries"),
		refTable("data_stores"),
		refTable("operation_systems"),
		refTable("programming_languages"),
		{Name: "shared_comparisons", Columns: []string{"id", "fingerprint", "created_at"}, OrderBy: "id"},
	},
	{
		{Name: "hostings", Columns: []string{"id", "name", "slug", "description", "website_url", "logo_url", "holding_id", "is_published", "rating", "review_count", "created_at", "updated_at"}, OrderBy: "id", BoolColumns: []string{"is_published"}, HasSerialID: true},
		// родитель раньше потомка, пока id родителя меньше
		{Name: "categories", Columns: []string{"id", "name", "slug", "description", "parent_id", "created_at", "updated_at"}, OrderBy: "id", HasSerialID: true},
	},
	{
		{Name: "tariffs", Columns: []string{"id", "hosting_id", "name", "price", "period", "disk_gb", "bandwidth_gb", "websites", "is_active", "created_at", "updated_at"}, OrderBy: "id", BoolColumns: []string{"is_active"}, HasSerialID: true},
		{Name: "products", Columns: []string{"id", "category_id", "name", "slug", "description", "price", "image_url", "is_active", "created_at", "updated_at"}, OrderBy: "id", BoolColumns: []string{"is_active"}, HasSerialID: true},
		{Name: "dealers", Columns: []string{"id", "name", "email", "phone", "website_url", "city_id", "created_at", "updated_at"}, OrderBy: "id", HasSerialID: true},
	},
	{
		{Name: "reviews", Columns: []string{"id", "hosting_id", "user_id", "author_name", "author_email", "rating", "pros", "cons", "content", "status", "moderator_id", "moderated_at", "rejection_reason", "created_at", "updated_at"}, OrderBy: "id", HasSerialID: true},
		joinTable("tariff_cms", "tariff_id", "cms_id"),
		joinTable("tariff_control_panels", "tariff_id", "control_panel_id"),
		joinTable("tariff_countries", "tariff_id", "country_id"),
		joinTable("tariff_data_stores", "tariff_id", "data_store_id"),
		joinTable("tariff_operation_systems", "tariff_id", "operation_system_id"),
		joinTable("tariff_programming_languages", "tariff_id", "programming_language_id"),
		joinTable("dealer_products", "dealer_id", "product_id"),
		joinTable("shared_comparison_tariffs", "shared_comparison_id", "tariff_id"),
	},
}

// ImageColumn - колонка со ссылкой на картинку, которую нужно перенести в MinIO.
type ImageColumn struct {
	Table  string
	Column string
	Kind   string // префикс объекта в bucket
}

var ImageColumns = []ImageColumn{
	{Table: "hostings", Column: "logo_url", Kind: "logos"},
	{Table: "products", Column: "image_url", Kind: "products"},
}

func (t Table) isBool(column string) bool {
	for _, c := range t.BoolColumns {
		if c == column {
			return true
		}
	}
	return false
}

// TableNames - плоский список таблиц плана по порядку.
func TableNames(plan []Stage) []string {
	var names []string
	for _, stage := range plan {
		for _, t := range stage {
			names = append(names, t.Name)
		}
	}
	return names
}
