package versions

import (
	"log"

	"tunesmith/studio/schema"

	"gorm.io/gorm"
)

type stepConversion struct {
	oldStage string
	newStep  int
}

// Migration_1_step_cursor replaces the textual current_step column on
// projects with the numeric processing_step / total_steps pair. Stage names
// now live only in the generation pipeline's ordered stage list.
func Migration_1_step_cursor(txn *gorm.DB) error {
	type Project struct {
		ProcessingStep int `gorm:"not null;default:0"`
		TotalSteps     int `gorm:"not null;default:6"`
	}

	if err := txn.Migrator().AddColumn(&Project{}, "ProcessingStep"); err != nil {
		return err
	}
	if err := txn.Migrator().AddColumn(&Project{}, "TotalSteps"); err != nil {
		return err
	}

	conversions := []stepConversion{
		{oldStage: "script", newStep: 1},
		{oldStage: "voice", newStep: 2},
		{oldStage: "instrumental", newStep: 3},
		{oldStage: "mixing", newStep: 4},
		{oldStage: "video", newStep: 5},
		{oldStage: "export", newStep: 6},
	}

	for _, conv := range conversions {
		err := txn.Model(&Project{}).Where("current_step = ?", conv.oldStage).Update("processing_step", conv.newStep).Error
		if err != nil {
			return err
		}
	}

	if err := txn.Model(&Project{}).Where("total_steps IS NULL OR total_steps = 0").Update("total_steps", schema.TotalPipelineSteps).Error; err != nil {
		return err
	}

	if err := txn.Migrator().DropColumn(&Project{}, "current_step"); err != nil {
		return err
	}

	log.Println("converted project step cursor to numeric columns")

	return nil
}
