package pg

import "context"

// LoadLanguageConfigs reads every persisted LanguageConfig row, used to
// warm-start lang.Registry at process startup.
func LoadLanguageConfigs(ctx context.Context, exec Executor) ([]LanguageConfig, error) {
	if exec == nil {
		return nil, validationErr("LoadLanguageConfigs", "executor is required")
	}
	rows, err := exec.Query(ctx, `SELECT code, name, installed FROM language_configs ORDER BY code ASC`)
	if err != nil {
		return nil, dbErr("LoadLanguageConfigs", err)
	}
	defer rows.Close()
	var out []LanguageConfig
	for rows.Next() {
		var c LanguageConfig
		if err := rows.Scan(&c.Code, &c.Name, &c.Installed); err != nil {
			return nil, dbErr("LoadLanguageConfigs", err)
		}
		out = append(out, c)
	}
	return out, dbErrOrNil("LoadLanguageConfigs", rows.Err())
}

// InstallLanguageConfig upserts a LanguageConfig row (administrative
// mutation, spec.md §4.1).
func InstallLanguageConfig(ctx context.Context, exec Executor, c LanguageConfig) error {
	if exec == nil {
		return validationErr("InstallLanguageConfig", "executor is required")
	}
	_, err := exec.Exec(ctx, `
		INSERT INTO language_configs (code, name, installed) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, installed = EXCLUDED.installed
	`, c.Code, c.Name, c.Installed)
	if err != nil {
		return dbErr("InstallLanguageConfig", err)
	}
	return nil
}

// UninstallLanguageConfig marks a LanguageConfig row as not installed.
func UninstallLanguageConfig(ctx context.Context, exec Executor, code string) error {
	if exec == nil {
		return validationErr("UninstallLanguageConfig", "executor is required")
	}
	ct, err := exec.Exec(ctx, `UPDATE language_configs SET installed = false WHERE code = $1`, code)
	if err != nil {
		return dbErr("UninstallLanguageConfig", err)
	}
	if ct.RowsAffected() == 0 {
		return notFoundErr("UninstallLanguageConfig", nil)
	}
	return nil
}
