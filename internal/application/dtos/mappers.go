// Package dtos - Mappers для конвертации domain entities в DTOs.
//
// Pattern: Mapper/Converter
// Отделяет domain representation от API representation
package dtos

import (
	"github.com/mypark/parkwallet/internal/domain/entities"
)

// ============================================
// User Mappers
// ============================================

// ToUserDTO конвертирует domain entity User в DTO.
// Password hash наружу не отдаётся никогда.
func ToUserDTO(user *entities.User) UserDTO {
	dto := UserDTO{
		ID:            user.ID().String(),
		Name:          user.Name(),
		Email:         user.Email(),
		Phone:         user.Phone(),
		Role:          string(user.Role()),
		WalletBalance: user.WalletBalance().Decimal(),
		CreatedAt:     user.CreatedAt(),
		UpdatedAt:     user.UpdatedAt(),
	}
	if vehicleID := user.DefaultVehicleID(); vehicleID != nil {
		s := vehicleID.String()
		dto.DefaultVehicleID = &s
	}
	return dto
}

// ToUserDTOList конвертирует список users.
func ToUserDTOList(users []*entities.User) []UserDTO {
	result := make([]UserDTO, len(users))
	for i, user := range users {
		result[i] = ToUserDTO(user)
	}
	return result
}

// ============================================
// Vehicle Mappers
// ============================================

// ToVehicleDTO конвертирует domain entity Vehicle в DTO.
func ToVehicleDTO(vehicle *entities.Vehicle) VehicleDTO {
	owners := vehicle.OwnerIDs()
	ownerIDs := make([]string, len(owners))
	for i, id := range owners {
		ownerIDs[i] = id.String()
	}

	return VehicleDTO{
		ID:           vehicle.ID().String(),
		LicensePlate: vehicle.Plate().Number(),
		Brand:        vehicle.Plate().Brand(),
		Color:        vehicle.Plate().Color(),
		OwnerIDs:     ownerIDs,
		CreatedAt:    vehicle.CreatedAt(),
	}
}

// ToVehicleDTOList конвертирует список vehicles.
func ToVehicleDTOList(vehicles []*entities.Vehicle) []VehicleDTO {
	result := make([]VehicleDTO, len(vehicles))
	for i, vehicle := range vehicles {
		result[i] = ToVehicleDTO(vehicle)
	}
	return result
}

// ============================================
// Parking Mappers
// ============================================

// ToSessionDTO конвертирует domain entity ParkingSession в DTO.
func ToSessionDTO(session *entities.ParkingSession) SessionDTO {
	return SessionDTO{
		ID:              session.ID().String(),
		VehicleID:       session.VehicleID().String(),
		AuthorityID:     session.AuthorityID().String(),
		CreatorID:       session.CreatorID().String(),
		Status:          string(session.Status()),
		StartingTime:    session.StartingTime(),
		DurationMinutes: session.DurationMinutes(),
		EndTime:         session.EndTime(),
	}
}

// ToSessionDTOList конвертирует список sessions.
func ToSessionDTOList(sessions []*entities.ParkingSession) []SessionDTO {
	result := make([]SessionDTO, len(sessions))
	for i, session := range sessions {
		result[i] = ToSessionDTO(session)
	}
	return result
}

// ============================================
// Saman Mappers
// ============================================

// ToSamanDTO конвертирует domain entity Saman в DTO.
func ToSamanDTO(saman *entities.Saman) SamanDTO {
	return SamanDTO{
		ID:          saman.ID().String(),
		Offense:     saman.Offense(),
		Price:       saman.Price().Decimal(),
		Status:      string(saman.Status()),
		VehicleID:   saman.VehicleID().String(),
		AuthorityID: saman.AuthorityID().String(),
		IssuedAt:    saman.IssuedAt(),
	}
}

// ToSamanDTOList конвертирует список samans.
func ToSamanDTOList(samans []*entities.Saman) []SamanDTO {
	result := make([]SamanDTO, len(samans))
	for i, saman := range samans {
		result[i] = ToSamanDTO(saman)
	}
	return result
}

// ============================================
// Transaction Mappers
// ============================================

// ToTransactionDTO конвертирует domain entity Transaction в DTO.
func ToTransactionDTO(tx *entities.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:         tx.ID().String(),
		Label:      string(tx.Label()),
		Direction:  string(tx.Direction()),
		Amount:     tx.Amount().Decimal(),
		Note:       tx.Note(),
		OrderID:    tx.OrderID(),
		OccurredAt: tx.OccurredAt(),
	}
}

// ToTransactionDTOList конвертирует список transactions.
func ToTransactionDTOList(transactions []*entities.Transaction) []TransactionDTO {
	result := make([]TransactionDTO, len(transactions))
	for i, tx := range transactions {
		result[i] = ToTransactionDTO(tx)
	}
	return result
}

// ============================================
// Authority Mappers
// ============================================

// ToAuthorityDTO конвертирует domain entity LocalAuthority в DTO.
func ToAuthorityDTO(authority *entities.LocalAuthority) AuthorityDTO {
	return AuthorityDTO{
		ID:          authority.ID().String(),
		Name:        authority.Name(),
		Nickname:    authority.Nickname(),
		Email:       authority.Email(),
		Phone:       authority.Phone(),
		Area:        authority.Area(),
		State:       authority.State(),
		Income:      authority.Income().Decimal(),
		TotalIncome: authority.TotalIncome().Decimal(),
		CreatedAt:   authority.CreatedAt(),
		UpdatedAt:   authority.UpdatedAt(),
	}
}

// ToAuthorityDTOList конвертирует список authorities.
func ToAuthorityDTOList(authorities []*entities.LocalAuthority) []AuthorityDTO {
	result := make([]AuthorityDTO, len(authorities))
	for i, authority := range authorities {
		result[i] = ToAuthorityDTO(authority)
	}
	return result
}
