package ds

// All возвращает модели в порядке, пригодном для AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Holding{},
		&City{},
		&CMS{},
		&ControlPanel{},
		&Country{},
		&DataStore{},
		&OperationSystem{},
		&ProgrammingLanguage{},
		&Hosting{},
		&Tariff{},
		&Review{},
		&Category{},
		&Product{},
		&Dealer{},
		&SharedComparison{},
	}
}
