package services

import "errors"

// Servis katmanının tipli hataları
// Terminal hatalar (retry edilmez) ile transient storage hataları ayrılır;
// postback handler terminal/transient ayrımına göre "0" döner,
// in-app handler'lar HTTP status'a map eder
var (
	// ErrUserNotFound kullanıcı hesabı yok (terminal, retry edilmez)
	ErrUserNotFound = errors.New("kullanıcı bulunamadı")

	// ErrSurveyNotFound anket kataloğunda yok (terminal)
	ErrSurveyNotFound = errors.New("anket bulunamadı")

	// ErrInvalidAmount tutar negatif veya sonlu değil (terminal)
	ErrInvalidAmount = errors.New("geçersiz ödül tutarı")

	// ErrAlreadyStarted kullanıcı anketi zaten başlatmış
	ErrAlreadyStarted = errors.New("anket zaten başlatılmış")

	// ErrAlreadyCompleted kullanıcı anketi zaten tamamlamış
	// (in-app akışta duplicate krediye izin verilmez)
	ErrAlreadyCompleted = errors.New("anket zaten tamamlanmış")
)
