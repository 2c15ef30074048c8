// Package user はリレーショナルストア上のユーザーレコードを管理します。
package user

// User はユーザーテーブルの1レコードです。
// 登録時に作成され、以降は変更されません。
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
}

// TableName はGORMが使用するテーブル名を返します。
func (User) TableName() string {
	return "users"
}
