package humanloop

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemakera2iruntime"
)

type fakeSageMaker struct {
	renderIn  *sagemaker.RenderUiTemplateInput
	renderOut *sagemaker.RenderUiTemplateOutput
	renderErr error

	taskUIIn  *sagemaker.CreateHumanTaskUiInput
	taskUIErr error

	flowIn  *sagemaker.CreateFlowDefinitionInput
	flowErr error

	// statuses returned by successive DescribeFlowDefinition calls.
	flowStatuses []smtypes.FlowDefinitionStatus
	describes    int

	workteamPages [][]smtypes.Workteam
	listIn        []*sagemaker.ListWorkteamsInput
}

func (f *fakeSageMaker) RenderUiTemplate(_ context.Context, in *sagemaker.RenderUiTemplateInput, _ ...func(*sagemaker.Options)) (*sagemaker.RenderUiTemplateOutput, error) {
	f.renderIn = in
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	if f.renderOut != nil {
		return f.renderOut, nil
	}
	return &sagemaker.RenderUiTemplateOutput{RenderedContent: aws.String("<html>rendered</html>")}, nil
}

func (f *fakeSageMaker) CreateHumanTaskUi(_ context.Context, in *sagemaker.CreateHumanTaskUiInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateHumanTaskUiOutput, error) {
	f.taskUIIn = in
	if f.taskUIErr != nil {
		return nil, f.taskUIErr
	}
	return &sagemaker.CreateHumanTaskUiOutput{
		HumanTaskUiArn: aws.String("arn:aws:sagemaker:us-east-1:123456789012:human-task-ui/" + aws.ToString(in.HumanTaskUiName)),
	}, nil
}

func (f *fakeSageMaker) CreateFlowDefinition(_ context.Context, in *sagemaker.CreateFlowDefinitionInput, _ ...func(*sagemaker.Options)) (*sagemaker.CreateFlowDefinitionOutput, error) {
	f.flowIn = in
	if f.flowErr != nil {
		return nil, f.flowErr
	}
	return &sagemaker.CreateFlowDefinitionOutput{
		FlowDefinitionArn: aws.String("arn:aws:sagemaker:us-east-1:123456789012:flow-definition/" + aws.ToString(in.FlowDefinitionName)),
	}, nil
}

func (f *fakeSageMaker) DescribeFlowDefinition(_ context.Context, in *sagemaker.DescribeFlowDefinitionInput, _ ...func(*sagemaker.Options)) (*sagemaker.DescribeFlowDefinitionOutput, error) {
	f.describes++
	status := smtypes.FlowDefinitionStatusActive
	if len(f.flowStatuses) > 0 {
		status = f.flowStatuses[0]
		f.flowStatuses = f.flowStatuses[1:]
	}
	out := &sagemaker.DescribeFlowDefinitionOutput{
		FlowDefinitionName:   in.FlowDefinitionName,
		FlowDefinitionArn:    aws.String("arn:aws:sagemaker:us-east-1:123456789012:flow-definition/" + aws.ToString(in.FlowDefinitionName)),
		FlowDefinitionStatus: status,
		OutputConfig:         &smtypes.FlowDefinitionOutputConfig{S3OutputPath: aws.String("s3://out/prefix")},
	}
	if status == smtypes.FlowDefinitionStatusFailed {
		out.FailureReason = aws.String("role cannot be assumed")
	}
	return out, nil
}

func (f *fakeSageMaker) ListWorkteams(_ context.Context, in *sagemaker.ListWorkteamsInput, _ ...func(*sagemaker.Options)) (*sagemaker.ListWorkteamsOutput, error) {
	f.listIn = append(f.listIn, in)
	idx := len(f.listIn) - 1
	out := &sagemaker.ListWorkteamsOutput{}
	if idx < len(f.workteamPages) {
		out.Workteams = f.workteamPages[idx]
	}
	if idx+1 < len(f.workteamPages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

type fakeRuntime struct {
	startIn  *sagemakera2iruntime.StartHumanLoopInput
	startErr error

	describeOut *sagemakera2iruntime.DescribeHumanLoopOutput
	describeErr error
}

func (f *fakeRuntime) StartHumanLoop(_ context.Context, in *sagemakera2iruntime.StartHumanLoopInput, _ ...func(*sagemakera2iruntime.Options)) (*sagemakera2iruntime.StartHumanLoopOutput, error) {
	f.startIn = in
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &sagemakera2iruntime.StartHumanLoopOutput{
		HumanLoopArn: aws.String("arn:aws:sagemaker:us-east-1:123456789012:human-loop/" + aws.ToString(in.HumanLoopName)),
	}, nil
}

func (f *fakeRuntime) DescribeHumanLoop(_ context.Context, in *sagemakera2iruntime.DescribeHumanLoopInput, _ ...func(*sagemakera2iruntime.Options)) (*sagemakera2iruntime.DescribeHumanLoopOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return f.describeOut, nil
}
