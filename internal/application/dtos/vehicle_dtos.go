// Package dtos - Vehicle DTOs: регистрация и отвязка автомобилей.
package dtos

import "time"

// ============================================
// Commands (Write операции)
// ============================================

// RegisterVehicleCommand - команда для привязки автомобиля к пользователю.
// Если тройка (plate, brand, color) уже зарегистрирована кем-то другим,
// пользователь добавляется во владельцы существующей записи.
type RegisterVehicleCommand struct {
	UserID       string `json:"user_id" validate:"required,uuid"`
	LicensePlate string `json:"license_plate" validate:"required,min=2,max=16"`
	Brand        string `json:"brand" validate:"required,min=2,max=50"`
	Color        string `json:"color" validate:"required,min=2,max=30"`
}

// UnlinkVehicleCommand - команда для отвязки автомобиля от пользователя.
type UnlinkVehicleCommand struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
}

// ============================================
// Queries (Read операции)
// ============================================

// ListVehiclesQuery - запрос автомобилей пользователя.
type ListVehiclesQuery struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// LookupVehicleQuery - enforcement-запрос по тройке.
// Используется warden'ом: «есть ли у этой машины действующая сессия?»
type LookupVehicleQuery struct {
	LicensePlate string `json:"license_plate" validate:"required"`
	Brand        string `json:"brand" validate:"required"`
	Color        string `json:"color" validate:"required"`
}

// ============================================
// Response DTOs
// ============================================

// VehicleDTO - представление автомобиля для API.
type VehicleDTO struct {
	ID           string    `json:"id"`
	LicensePlate string    `json:"license_plate"`
	Brand        string    `json:"brand"`
	Color        string    `json:"color"`
	OwnerIDs     []string  `json:"owner_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// VehicleListDTO - список автомобилей пользователя.
type VehicleListDTO struct {
	Vehicles []VehicleDTO `json:"vehicles"`
}

// EnforcementDTO - результат enforcement-проверки.
type EnforcementDTO struct {
	Vehicle VehicleDTO `json:"vehicle"`
	Covered bool       `json:"covered"` // Есть ли ongoing-сессия
	EndsAt  *time.Time `json:"ends_at,omitempty"`
}
