package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/harborworks/salvage_backend/config"
	"bitbucket.org/harborworks/salvage_backend/utils"
)

type RoleModule struct {
	BusinessId     string    `gorm:"primary_key;autoIncrement:false;not null" json:"business_id" binding:"required"`
	RoleId         int       `gorm:"primary_key;autoIncrement:false;not null" json:"role_id" binding:"required"`
	ModuleId       int       `gorm:"primary_key;autoIncrement:false;not null" json:"module_id" binding:"required"`
	AllowedActions string    `gorm:"not null" json:"allowed_actions" binding:"required"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Role           Role      `json:"role"`
	Module         Module    `json:"module"`
}

type NewRoleModule struct {
	RoleId         int    `json:"role_id" binding:"required"`
	ModuleId       int    `json:"module_id" binding:"required"`
	AllowedActions string `json:"allowed_actions" binding:"required"`
}

/*
cache
	RoleModuleList:$roleId
*/

func SaveRoleModule(ctx context.Context, input *NewRoleModule) (*RoleModule, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Role](ctx, businessId, input.RoleId); err != nil {
		return nil, errors.New("roleId does not exist")
	}
	if err := utils.ValidateResourceId[Module](ctx, businessId, input.ModuleId); err != nil {
		return nil, errors.New("moduleId does not exist")
	}

	roleModule := RoleModule{
		BusinessId:     businessId,
		RoleId:         input.RoleId,
		ModuleId:       input.ModuleId,
		AllowedActions: input.AllowedActions,
	}

	err := db.WithContext(ctx).Save(&roleModule).Error
	if err != nil {
		return nil, err
	}
	// remove from redis
	if err := config.RemoveRedisKey("RoleModuleList:" + fmt.Sprint(input.RoleId)); err != nil {
		return nil, err
	}
	return &roleModule, nil
}

func getRoleModules(ctx context.Context, businessId string, roleId int) ([]*RoleModule, error) {
	var results []*RoleModule
	redisKey := "RoleModuleList:" + fmt.Sprint(roleId)
	exists, err := config.GetRedisObject(redisKey, &results)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		err := db.WithContext(ctx).Where("business_id = ? AND role_id = ?", businessId, roleId).
			Preload("Module").
			Find(&results).Error
		if err != nil {
			return nil, err
		}
		if err := config.SetRedisObject(redisKey, &results, 0); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// HasPermission is the capability predicate consulted before any
// create/edit/delete action is exposed or executed. AllowedActions is a
// comma-separated allow-list ("create,edit,delete") or "*".
func HasPermission(ctx context.Context, roleId int, moduleName string, action string) (bool, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return false, errors.New("business id is required")
	}

	roleModules, err := getRoleModules(ctx, businessId, roleId)
	if err != nil {
		return false, err
	}

	for _, rm := range roleModules {
		if !strings.EqualFold(rm.Module.Name, moduleName) {
			continue
		}
		for _, allowed := range strings.Split(rm.AllowedActions, ",") {
			allowed = strings.TrimSpace(allowed)
			if allowed == "*" || strings.EqualFold(allowed, action) {
				return true, nil
			}
		}
	}
	return false, nil
}
