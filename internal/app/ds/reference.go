package ds

// Справочники, на которые ссылаются тарифы. Структура у всех одинаковая.

type CMS struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

func (CMS) TableName() string { return "cms" }

type ControlPanel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

type Country struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

type DataStore struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

type OperationSystem struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

type ProgrammingLanguage struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

// ReferenceItem - общая проекция строки любого справочника.
type ReferenceItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ReferenceKind описывает справочник: путь в API, таблицу и связь с тарифами.
type ReferenceKind struct {
	Key         string // используется в URL: /api/reference/:kind
	Table       string
	JoinTable   string
	JoinColumn  string
	Association string // имя поля в Tariff
}

var ReferenceKinds = []ReferenceKind{
	{Key: "cms", Table: "cms", JoinTable: "tariff_cms", JoinColumn: "cms_id", Association: "CMS"},
	{Key: "control-panels", Table: "control_panels", JoinTable: "tariff_control_panels", JoinColumn: "control_panel_id", Association: "ControlPanels"},
	{Key: "countries", Table: "countries", JoinTable: "tariff_countries", JoinColumn: "country_id", Association: "Countries"},
	{Key: "data-stores", Table: "data_stores", JoinTable: "tariff_data_stores", JoinColumn: "data_store_id", Association: "DataStores"},
	{Key: "operation-systems", Table: "operation_systems", JoinTable: "tariff_operation_systems", JoinColumn: "operation_system_id", Association: "OperationSystems"},
	{Key: "programming-languages", Table: "programming_languages", JoinTable: "tariff_programming_languages", JoinColumn: "programming_language_id", Association: "ProgrammingLanguages"},
}

func LookupReferenceKind(key string) (ReferenceKind, bool) {
	for _, k := range ReferenceKinds {
		if k.Key == key {
			return k, true
		}
	}
	return ReferenceKind{}, false
}
